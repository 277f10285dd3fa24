// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

// Package abtree implements an authenticated, order-preserving search tree:
// a hybrid B+Tree and Merkle tree meant to be operated by an untrusted
// server on behalf of a client that alone knows how to order keys.
//
// The tree stores opaque keys and hands them back in the order it was given
// them; it never compares two keys itself. Instead, every descent through
// the tree consults a client-supplied command, an oracle that inspects the
// (possibly encrypted) keys held by a branch or leaf and tells the engine
// which way to go. The engine's job is purely structural: traversal, node
// splitting, checksumming and persistence. Authentication rides along for
// free, because every mutation also produces a Merkle proof that the client
// checks with verifyChanges before the engine commits it.
package abtree
