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

// GeneralNodeProof is one level of a Merkle path: the sibling hashes of
// the node at that level (kv-checksums for a leaf, child hashes for a
// branch), the index that was affected, and a state-hash slot that the
// engine leaves empty at every level, leaf and branch alike.
type GeneralNodeProof struct {
	StateHashSoFar Hash
	SiblingHashes  []Hash
	AffectedIdx    int
}

// MerklePath is an ordered sequence of per-level proofs from the root down
// to the affected leaf. It is produced fresh by every put and handed to
// WriteCommand.VerifyChanges; the engine never retains one afterward.
type MerklePath []GeneralNodeProof

// prepend returns a new MerklePath with elem placed before p's elements,
// i.e. one level closer to the root.
func (p MerklePath) prepend(elem GeneralNodeProof) MerklePath {
	out := make(MerklePath, 0, len(p)+1)
	out = append(out, elem)
	out = append(out, p...)
	return out
}

// PathElem records one branch visited while descending toward a leaf, and
// the index of the child that was chosen.
type PathElem struct {
	BranchId     NodeId
	Branch       *Branch
	NextChildIdx int
}

// Trail is the ordered record of branches visited during a put's descent,
// root first. It is materialized as plain local state rather than as
// parent pointers on the nodes themselves, so no node ever needs to know
// its parent.
type Trail []PathElem
