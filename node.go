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

// nodeTag distinguishes branch and leaf encodings on the wire.
type nodeTag byte

const (
	leafTag   nodeTag = 1
	branchTag nodeTag = 2
)

// Node is the tagged sum of the two node variants the engine persists.
// Values are immutable after construction: every structural change
// produces a new Node rather than mutating one in place.
type Node interface {
	// Checksum is hasher(concat(kvChecksums)) for a leaf, or
	// hasher(concat(childHashes)) for a branch.
	Checksum() Hash
	// Size is the number of entries (leaf) or children (branch).
	Size() int

	tag() nodeTag
}

// ChildRef pairs a child's NodeId with its checksum, as stored in a branch.
type ChildRef struct {
	Id   NodeId
	Hash Hash
}

// Leaf holds an ordered run of (key, valueRef, kv-checksum) triples, plus
// the id of the next leaf in the rightward scan order.
type Leaf struct {
	keys         []Key
	valueRefs    []ValueRef
	kvChecksums  []Hash
	rightSibling *NodeId
	checksum     Hash
}

// NewLeaf builds a Leaf from parallel slices and computes its checksum.
// The three slices must have equal length.
func NewLeaf(hasher Hasher, keys []Key, refs []ValueRef, kv []Hash, rightSibling *NodeId) *Leaf {
	if len(keys) != len(refs) || len(keys) != len(kv) {
		panic("abtree: leaf slices must have equal length")
	}
	l := &Leaf{
		keys:         keys,
		valueRefs:    refs,
		kvChecksums:  kv,
		rightSibling: rightSibling,
	}
	l.checksum = hashConcat(hasher, l.kvChecksums)
	return l
}

func (l *Leaf) tag() nodeTag     { return leafTag }
func (l *Leaf) Size() int        { return len(l.keys) }
func (l *Leaf) Checksum() Hash   { return l.checksum }
func (l *Leaf) Keys() []Key      { return l.keys }
func (l *Leaf) ValueRefs() []ValueRef { return l.valueRefs }
func (l *Leaf) KVChecksums() []Hash   { return l.kvChecksums }

// RightSibling returns the id of the next leaf in scan order, if any.
func (l *Leaf) RightSibling() (NodeId, bool) {
	if l.rightSibling == nil {
		return 0, false
	}
	return *l.rightSibling, true
}

func assertAscending(keys []Key, enabled bool) {
	if !enabled {
		return
	}
	for i := 1; i < len(keys); i++ {
		if bytesCompare(keys[i-1], keys[i]) >= 0 {
			panic(fmt.Errorf("%w: keys not strictly ascending at %d", ErrAssertion, i))
		}
	}
}

// bytesCompare is used only by the debugging assertion above: it never
// participates in a traversal decision, per the engine's "never compares
// keys" invariant.
func bytesCompare(a, b Key) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// insert returns a new leaf with (key, ref, kvHash) inserted at idx.
func (l *Leaf) insert(hasher Hasher, key Key, ref ValueRef, kvHash Hash, idx int) *Leaf {
	keys := insertKey(l.keys, idx, key)
	refs := insertRef(l.valueRefs, idx, ref)
	kv := insertHash(l.kvChecksums, idx, kvHash)
	out := &Leaf{keys: keys, valueRefs: refs, kvChecksums: kv, rightSibling: l.rightSibling}
	out.checksum = hashConcat(hasher, out.kvChecksums)
	return out
}

// rewrite returns a new leaf with the triple at idx replaced. ref must
// equal the ref already stored at idx: updates preserve the value ref.
func (l *Leaf) rewrite(hasher Hasher, key Key, ref ValueRef, kvHash Hash, idx int) *Leaf {
	if l.valueRefs[idx] != ref {
		panic("abtree: rewrite must preserve the existing value ref")
	}
	keys := append([]Key(nil), l.keys...)
	refs := append([]ValueRef(nil), l.valueRefs...)
	kv := append([]Hash(nil), l.kvChecksums...)
	keys[idx] = key.clone()
	kv[idx] = kvHash.clone()
	out := &Leaf{keys: keys, valueRefs: refs, kvChecksums: kv, rightSibling: l.rightSibling}
	out.checksum = hashConcat(hasher, out.kvChecksums)
	return out
}

// split divides an overflowing leaf into a left half (ceil(size/2)) and a
// right half (floor(size/2)). The left half's rightSibling becomes newRightId;
// the right half inherits the old rightSibling.
func (l *Leaf) split(hasher Hasher, newRightId NodeId) (left, right *Leaf) {
	n := l.Size()
	leftSize := (n + 1) / 2

	left = &Leaf{
		keys:         cloneKeys(l.keys[:leftSize]),
		valueRefs:    append([]ValueRef(nil), l.valueRefs[:leftSize]...),
		kvChecksums:  cloneHashes(l.kvChecksums[:leftSize]),
		rightSibling: idPtr(newRightId),
	}
	left.checksum = hashConcat(hasher, left.kvChecksums)

	right = &Leaf{
		keys:         cloneKeys(l.keys[leftSize:]),
		valueRefs:    append([]ValueRef(nil), l.valueRefs[leftSize:]...),
		kvChecksums:  cloneHashes(l.kvChecksums[leftSize:]),
		rightSibling: l.rightSibling,
	}
	right.checksum = hashConcat(hasher, right.kvChecksums)
	return left, right
}

// toProof extracts the sibling hashes a verifier needs to recompute this
// leaf's checksum, alongside the index that was affected.
func (l *Leaf) toProof(affectedIdx int) GeneralNodeProof {
	return GeneralNodeProof{
		StateHashSoFar: Hash{},
		SiblingHashes:  cloneHashes(l.kvChecksums),
		AffectedIdx:    affectedIdx,
	}
}

// Branch holds an ordered run of (key, childId, childHash) triples. Unlike
// a classic B+Tree, a branch carries exactly Size() children, not
// Size()+1: the traversal protocol (nextChildIndex) is written to match.
type Branch struct {
	keys        []Key
	childIds    []NodeId
	childHashes []Hash
	checksum    Hash
}

// NewBranch builds a Branch from parallel slices and computes its checksum.
func NewBranch(hasher Hasher, keys []Key, childIds []NodeId, childHashes []Hash) *Branch {
	if len(keys) != len(childIds) || len(keys) != len(childHashes) {
		panic("abtree: branch slices must have equal length")
	}
	b := &Branch{keys: keys, childIds: childIds, childHashes: childHashes}
	b.checksum = hashConcat(hasher, b.childHashes)
	return b
}

// newBranchFromSplit synthesizes the two-child branch created when a leaf
// or branch at the root splits. keys[i] is the max key of child i:
// leftLastKey for the left child, rightLastKey for the right.
func newBranchFromSplit(hasher Hasher, leftLastKey, rightLastKey Key, left, right ChildRef) *Branch {
	return NewBranch(hasher,
		[]Key{leftLastKey.clone(), rightLastKey.clone()},
		[]NodeId{left.Id, right.Id},
		[]Hash{left.Hash.clone(), right.Hash.clone()},
	)
}

func (b *Branch) tag() nodeTag        { return branchTag }
func (b *Branch) Size() int           { return len(b.keys) }
func (b *Branch) Checksum() Hash      { return b.checksum }
func (b *Branch) Keys() []Key         { return b.keys }
func (b *Branch) ChildIds() []NodeId  { return b.childIds }
func (b *Branch) ChildHashes() []Hash { return b.childHashes }

// insertChild returns a new branch with (popUpKey, child) inserted at idx.
func (b *Branch) insertChild(hasher Hasher, popUpKey Key, child ChildRef, idx int) *Branch {
	keys := insertKey(b.keys, idx, popUpKey)
	ids := insertId(b.childIds, idx, child.Id)
	hashes := insertHash(b.childHashes, idx, child.Hash)
	return NewBranch(hasher, keys, ids, hashes)
}

// updateChildRef returns a new branch with the child id and hash at idx
// replaced; the key at idx is unchanged.
func (b *Branch) updateChildRef(hasher Hasher, child ChildRef, idx int) *Branch {
	ids := append([]NodeId(nil), b.childIds...)
	hashes := append([]Hash(nil), b.childHashes...)
	ids[idx] = child.Id
	hashes[idx] = child.Hash.clone()
	return NewBranch(hasher, cloneKeys(b.keys), ids, hashes)
}

// updateChildChecksum returns a new branch with only the child hash at idx
// replaced.
func (b *Branch) updateChildChecksum(hasher Hasher, h Hash, idx int) *Branch {
	hashes := append([]Hash(nil), b.childHashes...)
	hashes[idx] = h.clone()
	return NewBranch(hasher, cloneKeys(b.keys), append([]NodeId(nil), b.childIds...), hashes)
}

// split mirrors Leaf.split: the left half keeps ceil(size/2) entries.
func (b *Branch) split(hasher Hasher) (left, right *Branch) {
	n := b.Size()
	leftSize := (n + 1) / 2

	left = NewBranch(hasher,
		cloneKeys(b.keys[:leftSize]),
		append([]NodeId(nil), b.childIds[:leftSize]...),
		cloneHashes(b.childHashes[:leftSize]),
	)
	right = NewBranch(hasher,
		cloneKeys(b.keys[leftSize:]),
		append([]NodeId(nil), b.childIds[leftSize:]...),
		cloneHashes(b.childHashes[leftSize:]),
	)
	return left, right
}

func (b *Branch) toProof(affectedIdx int) GeneralNodeProof {
	return GeneralNodeProof{
		StateHashSoFar: Hash{},
		SiblingHashes:  cloneHashes(b.childHashes),
		AffectedIdx:    affectedIdx,
	}
}

func idPtr(id NodeId) *NodeId {
	return &id
}

func cloneKeys(keys []Key) []Key {
	out := make([]Key, len(keys))
	for i, k := range keys {
		out[i] = k.clone()
	}
	return out
}

func insertKey(keys []Key, idx int, k Key) []Key {
	out := make([]Key, 0, len(keys)+1)
	out = append(out, cloneKeys(keys[:idx])...)
	out = append(out, k.clone())
	out = append(out, cloneKeys(keys[idx:])...)
	return out
}

func insertRef(refs []ValueRef, idx int, r ValueRef) []ValueRef {
	out := make([]ValueRef, 0, len(refs)+1)
	out = append(out, refs[:idx]...)
	out = append(out, r)
	out = append(out, refs[idx:]...)
	return out
}

func insertHash(hs []Hash, idx int, h Hash) []Hash {
	out := make([]Hash, 0, len(hs)+1)
	out = append(out, cloneHashes(hs[:idx])...)
	out = append(out, h.clone())
	out = append(out, cloneHashes(hs[idx:])...)
	return out
}

func insertId(ids []NodeId, idx int, id NodeId) []NodeId {
	out := make([]NodeId, 0, len(ids)+1)
	out = append(out, ids[:idx]...)
	out = append(out, id)
	out = append(out, ids[idx:]...)
	return out
}
