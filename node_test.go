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
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// identityHasher concatenates its input back out unchanged. It makes
// checksum arithmetic legible in test failures and matches the "hasher =
// identity-concat for brevity" convention used for the scenarios this
// engine was designed against.
type identityHasher struct{}

func (identityHasher) Hash(data []byte) Hash {
	out := make(Hash, len(data))
	copy(out, data)
	return out
}

func h(s string) Hash { return Hash(s) }
func k(s string) Key  { return Key(s) }

func TestLeafInsertAndChecksum(t *testing.T) {
	hasher := identityHasher{}
	l := NewLeaf(hasher, []Key{k("a"), k("c")}, []ValueRef{1, 3}, []Hash{h("ha"), h("hc")}, nil)

	l2 := l.insert(hasher, k("b"), 2, h("hb"), 1)

	if l2.Size() != 3 {
		t.Fatalf("size = %d, want 3", l2.Size())
	}
	wantKeys := []Key{k("a"), k("b"), k("c")}
	for i, want := range wantKeys {
		if !bytes.Equal(l2.Keys()[i], want) {
			t.Fatalf("key[%d] = %q, want %q", i, l2.Keys()[i], want)
		}
	}
	wantChecksum := Hash("hahbhc")
	if !l2.Checksum().Equal(wantChecksum) {
		t.Fatalf("checksum = %q, want %q\n%s", l2.Checksum(), wantChecksum, spew.Sdump(l2))
	}
	// original is untouched
	if l.Size() != 2 {
		t.Fatalf("original leaf mutated: size = %d, want 2", l.Size())
	}
}

func TestLeafRewritePreservesRef(t *testing.T) {
	hasher := identityHasher{}
	l := NewLeaf(hasher, []Key{k("a")}, []ValueRef{1}, []Hash{h("ha")}, nil)

	l2 := l.rewrite(hasher, k("a"), 1, h("ha2"), 0)
	if l2.ValueRefs()[0] != 1 {
		t.Fatalf("ref changed on rewrite: got %d, want 1", l2.ValueRefs()[0])
	}
	if !l2.Checksum().Equal(Hash("ha2")) {
		t.Fatalf("checksum = %q, want ha2", l2.Checksum())
	}
}

func TestLeafRewriteRejectsRefChange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when rewrite is given a different ref")
		}
	}()
	hasher := identityHasher{}
	l := NewLeaf(hasher, []Key{k("a")}, []ValueRef{1}, []Hash{h("ha")}, nil)
	l.rewrite(hasher, k("a"), 2, h("ha2"), 0)
}

func TestLeafSplitParity(t *testing.T) {
	hasher := identityHasher{}
	l := NewLeaf(hasher,
		[]Key{k("a"), k("b"), k("c"), k("d")},
		[]ValueRef{1, 2, 3, 4},
		[]Hash{h("a"), h("b"), h("c"), h("d")},
		nil,
	)

	left, right := l.split(hasher, 42)
	if left.Size() != 2 || right.Size() != 2 {
		t.Fatalf("split sizes = %d/%d, want 2/2", left.Size(), right.Size())
	}
	rid, ok := left.RightSibling()
	if !ok || rid != 42 {
		t.Fatalf("left.rightSibling = %v, want 42", rid)
	}
	if _, ok := right.RightSibling(); ok {
		t.Fatalf("right.rightSibling should inherit the (absent) original")
	}
}

func TestLeafSplitOddSizeFavorsLeft(t *testing.T) {
	hasher := identityHasher{}
	l := NewLeaf(hasher,
		[]Key{k("a"), k("b"), k("c")},
		[]ValueRef{1, 2, 3},
		[]Hash{h("a"), h("b"), h("c")},
		nil,
	)
	left, right := l.split(hasher, 7)
	if left.Size() != 2 {
		t.Fatalf("left size = %d, want ceil(3/2) = 2", left.Size())
	}
	if right.Size() != 1 {
		t.Fatalf("right size = %d, want floor(3/2) = 1", right.Size())
	}
}

func TestBranchInsertUpdateAndSplit(t *testing.T) {
	hasher := identityHasher{}
	b := NewBranch(hasher, []Key{k("m")}, []NodeId{1}, []Hash{h("h1")})

	b2 := b.insertChild(hasher, k("z"), ChildRef{Id: 2, Hash: h("h2")}, 1)
	if b2.Size() != 2 {
		t.Fatalf("size = %d, want 2", b2.Size())
	}
	if !b2.Checksum().Equal(Hash("h1h2")) {
		t.Fatalf("checksum = %q, want h1h2", b2.Checksum())
	}

	b3 := b2.updateChildRef(hasher, ChildRef{Id: 9, Hash: h("h9")}, 0)
	if b3.ChildIds()[0] != 9 || !bytes.Equal(b3.ChildHashes()[0], h("h9")) {
		t.Fatalf("updateChildRef did not replace id/hash at idx 0")
	}
	if !bytes.Equal(b3.Keys()[0], k("m")) {
		t.Fatalf("updateChildRef must not touch the key")
	}

	b4 := b3.updateChildChecksum(hasher, h("hX"), 1)
	if !bytes.Equal(b4.ChildHashes()[1], h("hX")) {
		t.Fatalf("updateChildChecksum did not replace the hash at idx 1")
	}
	if b4.ChildIds()[1] != b3.ChildIds()[1] {
		t.Fatalf("updateChildChecksum must not touch the child id")
	}

	left, right := b4.split(hasher)
	if left.Size()+right.Size() != b4.Size() {
		t.Fatalf("split lost entries: %d + %d != %d", left.Size(), right.Size(), b4.Size())
	}
}

func TestToProofCarriesSiblingHashes(t *testing.T) {
	hasher := identityHasher{}
	l := NewLeaf(hasher, []Key{k("a"), k("b")}, []ValueRef{1, 2}, []Hash{h("a"), h("b")}, nil)
	proof := l.toProof(1)
	if proof.AffectedIdx != 1 {
		t.Fatalf("affectedIdx = %d, want 1", proof.AffectedIdx)
	}
	if len(proof.SiblingHashes) != 2 {
		t.Fatalf("siblingHashes len = %d, want 2", len(proof.SiblingHashes))
	}
	if !proof.StateHashSoFar.Empty() {
		t.Fatalf("leaf proof's stateHashSoFar should start empty")
	}
}
