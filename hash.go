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

package abtree

import (
	"bytes"

	"golang.org/x/crypto/sha3"
)

// Hash is an opaque digest produced by a Hasher. Equality is byte equality;
// a nil or zero-length Hash is the distinguished empty hash.
type Hash []byte

// Empty reports whether h is the distinguished empty hash.
func (h Hash) Empty() bool {
	return len(h) == 0
}

// Equal reports whether h and other carry the same bytes.
func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h, other)
}

func (h Hash) clone() Hash {
	if h == nil {
		return nil
	}
	out := make(Hash, len(h))
	copy(out, h)
	return out
}

// Hasher digests an arbitrary byte string into a Hash. Implementations must
// be deterministic, collision-resistant and stateless. Node construction
// uses it for checksums, and Put uses it for each entry's kv-checksum.
type Hasher interface {
	Hash(data []byte) Hash
}

// Keccak256Hasher is the default Hasher. It is stateless and safe for
// concurrent use.
type Keccak256Hasher struct{}

// Hash implements Hasher.
func (Keccak256Hasher) Hash(data []byte) Hash {
	digest := sha3.NewLegacyKeccak256()
	digest.Write(data)
	return digest.Sum(nil)
}

// hashConcat hashes the concatenation of a list of hashes, in order. It is
// the checksum rule shared by leaves (over kv-checksums) and branches (over
// child hashes).
func hashConcat(hasher Hasher, parts []Hash) Hash {
	if len(parts) == 0 {
		return hasher.Hash(nil)
	}
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	buf := make([]byte, 0, total)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return hasher.Hash(buf)
}

func cloneHashes(hs []Hash) []Hash {
	out := make([]Hash, len(hs))
	for i, h := range hs {
		out[i] = h.clone()
	}
	return out
}
