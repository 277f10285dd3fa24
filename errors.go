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
	"errors"
	"fmt"
)

// Sentinel error kinds. Storage errors are surfaced from the Store
// unchanged and are not wrapped here.
var (
	// ErrCodec marks a node that failed to decode, or that decoded to
	// the wrong variant (e.g. a branch found while following a leaf's
	// rightSibling chain).
	ErrCodec = errors.New("abtree: codec error")

	// ErrCommand marks a command callback that failed or returned an
	// out-of-range index.
	ErrCommand = errors.New("abtree: command error")

	// ErrVerificationRejected marks a WriteCommand.VerifyChanges call
	// that returned a non-nil error; the put is aborted without
	// persisting anything.
	ErrVerificationRejected = errors.New("abtree: verification rejected")

	// ErrAssertion marks a violated debugging invariant, e.g. keys not
	// strictly ascending when Config.AssertKeyOrder is set.
	ErrAssertion = errors.New("abtree: assertion violation")

	// ErrIndexOutOfRange marks a command-supplied index outside the
	// bounds the engine checked it against.
	ErrIndexOutOfRange = errors.New("abtree: index out of range")
)

func outOfRange(op string, idx, size int) error {
	return fmt.Errorf("%w: %w: %s returned %d, want [0, %d)", ErrCommand, ErrIndexOutOfRange, op, idx, size)
}

func codecErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCodec, fmt.Sprintf(format, args...))
}

func commandErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCommand, fmt.Sprintf(format, args...))
}
