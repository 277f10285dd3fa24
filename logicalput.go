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

import "context"

// idAllocFn mints a fresh NodeId, typically backed by Store.NextId.
type idAllocFn func(ctx context.Context) (NodeId, error)

// updateParentFn folds a change at one level of the tree into the
// PathElem one level up: either a simple checksum replacement, or the
// insertion of a newly split sibling.
type updateParentFn func(PathElem) PathElem

func identityUpdate(e PathElem) PathElem { return e }

func replaceChildChecksum(hasher Hasher, h Hash) updateParentFn {
	return func(e PathElem) PathElem {
		e.Branch = e.Branch.updateChildChecksum(hasher, h, e.NextChildIdx)
		return e
	}
}

// insertLeftAndUpdateRight is the parent-update rule applied when a child
// has split into (left, right): the parent gains a new entry for left at
// the old slot, and the entry previously at that slot, now one position
// further right, keeps its key but refers to right.
func insertLeftAndUpdateRight(hasher Hasher, popUpKey Key, left, right ChildRef, insertToLeft bool) updateParentFn {
	return func(e PathElem) PathElem {
		branch := e.Branch.insertChild(hasher, popUpKey, left, e.NextChildIdx)
		branch = branch.updateChildRef(hasher, right, e.NextChildIdx+1)
		nextIdx := e.NextChildIdx
		if !insertToLeft {
			nextIdx++
		}
		return PathElem{BranchId: e.BranchId, Branch: branch, NextChildIdx: nextIdx}
	}
}

// logicalPut is the pure core of a write: given the leaf that resulted
// from applying the client's put details, and the trail recorded on the
// way down to it, it computes the Merkle proof to send to VerifyChanges
// and the PutTask to commit if the client accepts it. Allocating a fresh
// NodeId (via allocId) is the only side effect it performs; it never
// touches the store directly and never mutates an existing node value.
func logicalPut(ctx context.Context, cfg Config, allocId idAllocFn, leafId NodeId, newLeaf *Leaf, insertionIdx int, trail Trail) (MerklePath, PutTask, error) {
	hasher := cfg.hasher()

	proof, update, task, err := leafPutContext(ctx, cfg, hasher, allocId, leafId, newLeaf, insertionIdx)
	if err != nil {
		return nil, PutTask{}, err
	}

	for i := len(trail) - 1; i >= 0; i-- {
		elem := update(trail[i])

		if elem.Branch.Size() <= cfg.MaxDegree() {
			task.addWrite(elem.BranchId, elem.Branch)
			proof = proof.prepend(elem.Branch.toProof(elem.NextChildIdx))
			update = replaceChildChecksum(hasher, elem.Branch.Checksum())
			continue
		}

		splitProof, splitUpdate, splitTask, err := splitBranchContext(ctx, allocId, hasher, elem)
		if err != nil {
			return nil, PutTask{}, err
		}
		task = task.merge(splitTask)
		proof = append(splitProof, proof...)
		update = splitUpdate
	}

	return proof, task, nil
}

// leafPutContext implements the "Leaf context" step of §4.4: it decides
// whether the updated leaf overflows and, if so, splits it (allocating a
// new root branch when the leaf being split is the tree root).
func leafPutContext(ctx context.Context, cfg Config, hasher Hasher, allocId idAllocFn, leafId NodeId, newLeaf *Leaf, insertionIdx int) (MerklePath, updateParentFn, PutTask, error) {
	if newLeaf.Size() <= cfg.MaxDegree() {
		task := PutTask{}
		task.addWrite(leafId, newLeaf)
		proof := MerklePath{newLeaf.toProof(insertionIdx)}
		return proof, replaceChildChecksum(hasher, newLeaf.Checksum()), task, nil
	}

	rightId, err := allocId(ctx)
	if err != nil {
		return nil, nil, PutTask{}, err
	}
	leftId := leafId
	if leafId == RootId {
		if leftId, err = allocId(ctx); err != nil {
			return nil, nil, PutTask{}, err
		}
	}

	left, right := newLeaf.split(hasher, rightId)
	insertToLeft := insertionIdx < left.Size()
	affectedIdx := insertionIdx
	var affectedNode *Leaf
	if insertToLeft {
		affectedNode = left
	} else {
		affectedIdx = insertionIdx - left.Size()
		affectedNode = right
	}
	base := MerklePath{affectedNode.toProof(affectedIdx)}

	task := PutTask{WasSplitting: true}
	task.addWrite(leftId, left)
	task.addWrite(rightId, right)

	popUpKey := left.Keys()[left.Size()-1]
	leftRef := ChildRef{Id: leftId, Hash: left.Checksum()}
	rightRef := ChildRef{Id: rightId, Hash: right.Checksum()}

	if leafId == RootId {
		newParent := newBranchFromSplit(hasher, popUpKey, right.Keys()[right.Size()-1], leftRef, rightRef)
		affectedParentIdx := 0
		if !insertToLeft {
			affectedParentIdx = 1
		}
		task.IncreaseDepth = true
		task.addWrite(RootId, newParent)
		proof := base.prepend(newParent.toProof(affectedParentIdx))
		return proof, identityUpdate, task, nil
	}

	update := insertLeftAndUpdateRight(hasher, popUpKey, leftRef, rightRef, insertToLeft)
	return base, update, task, nil
}

// splitBranchContext implements the branch-overflow half of the trail
// fold in §4.4. It mirrors leafPutContext, with the asymmetry called out
// by the spec: a non-root branch keeps its own id for the right half and
// allocates a fresh id only for the left half.
func splitBranchContext(ctx context.Context, allocId idAllocFn, hasher Hasher, elem PathElem) (MerklePath, updateParentFn, PutTask, error) {
	branch := elem.Branch

	leftId, err := allocId(ctx)
	if err != nil {
		return nil, nil, PutTask{}, err
	}
	rightId := elem.BranchId
	isRoot := elem.BranchId == RootId
	if isRoot {
		if rightId, err = allocId(ctx); err != nil {
			return nil, nil, PutTask{}, err
		}
	}

	left, right := branch.split(hasher)
	insertToLeft := elem.NextChildIdx < left.Size()
	affectedIdx := elem.NextChildIdx
	var affectedNode *Branch
	if insertToLeft {
		affectedNode = left
	} else {
		affectedIdx = elem.NextChildIdx - left.Size()
		affectedNode = right
	}
	base := MerklePath{affectedNode.toProof(affectedIdx)}

	task := PutTask{WasSplitting: true}
	task.addWrite(leftId, left)
	task.addWrite(rightId, right)

	popUpKey := left.Keys()[left.Size()-1]
	leftRef := ChildRef{Id: leftId, Hash: left.Checksum()}
	rightRef := ChildRef{Id: rightId, Hash: right.Checksum()}

	if isRoot {
		newParent := newBranchFromSplit(hasher, popUpKey, right.Keys()[right.Size()-1], leftRef, rightRef)
		affectedParentIdx := 0
		if !insertToLeft {
			affectedParentIdx = 1
		}
		task.IncreaseDepth = true
		task.addWrite(RootId, newParent)
		proof := base.prepend(newParent.toProof(affectedParentIdx))
		return proof, identityUpdate, task, nil
	}

	update := insertLeftAndUpdateRight(hasher, popUpKey, leftRef, rightRef, insertToLeft)
	return base, update, task, nil
}
