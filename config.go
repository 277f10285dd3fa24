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

import "fmt"

// Config carries the tunables recognized by the engine.
type Config struct {
	// Arity is the maximum number of children (branches) or entries
	// (leaves) a non-overflowing node may carry. Must be >= 4.
	Arity int

	// Alpha is the minimum fill ratio for a non-root node, in (0, 0.5].
	Alpha float64

	// AssertKeyOrder, when true, makes every persisted node's keys
	// checked for strict ascending order; a mismatch is fatal. This is
	// a debugging aid: the engine never uses it to make decisions.
	AssertKeyOrder bool

	// Hasher computes node checksums and kv-checksums. Defaults to
	// Keccak256Hasher when left nil.
	Hasher Hasher
}

// DefaultConfig returns a Config with reasonable defaults: arity 64,
// alpha 0.25, assertions disabled.
func DefaultConfig() Config {
	return Config{
		Arity:  64,
		Alpha:  0.25,
		Hasher: Keccak256Hasher{},
	}
}

// MaxDegree is the maximum number of entries/children a node may carry
// before it must split.
func (c Config) MaxDegree() int {
	return c.Arity
}

// MinDegree is the minimum number of entries/children a non-root node
// must carry.
func (c Config) MinDegree() int {
	return int(c.Alpha * float64(c.Arity))
}

// Validate reports a non-nil error if the configuration is unusable.
func (c Config) Validate() error {
	if c.Arity < 4 {
		return fmt.Errorf("abtree: arity must be >= 4, got %d", c.Arity)
	}
	if c.Alpha <= 0 || c.Alpha > 0.5 {
		return fmt.Errorf("abtree: alpha must be in (0, 0.5], got %v", c.Alpha)
	}
	return nil
}

func (c Config) hasher() Hasher {
	if c.Hasher == nil {
		return Keccak256Hasher{}
	}
	return c.Hasher
}
