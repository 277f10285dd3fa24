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
	"context"

	"golang.org/x/sync/errgroup"
)

// Put descends the tree under cmd's direction, applies the leaf-level
// change cmd.PutDetails describes, and folds that change up through every
// ancestor on the path (splitting nodes as needed). The resulting Merkle
// proof is sent to cmd.VerifyChanges; only if that succeeds does Put
// persist anything. Any error raised before the commit step — from the
// store, from cmd, or from a rejected verification — aborts the call with
// the tree observably unchanged. A store error during the commit itself
// can leave some of the task's nodes written (see commit).
func (t *Tree) Put(ctx context.Context, cmd WriteCommand) (ValueRef, error) {
	if err := t.lock(ctx); err != nil {
		return 0, err
	}
	defer t.unlock()

	root, err := t.loadOrCreateRoot(ctx)
	if err != nil {
		return 0, err
	}

	allocId := func(ctx context.Context) (NodeId, error) { return t.store.NextId(ctx) }

	if leaf, ok := root.(*Leaf); ok && leaf.Size() == 0 {
		return t.putIntoEmpty(ctx, cmd, allocId)
	}

	var trail Trail
	branchId := NodeId(RootId)
	node := root
	for {
		branch, ok := node.(*Branch)
		if !ok {
			break
		}
		idx, err := cmd.NextChildIndex(ctx, branch)
		if err != nil {
			return 0, commandErrorf("nextChildIndex: %v", err)
		}
		if idx < 0 || idx >= branch.Size() {
			return 0, outOfRange("nextChildIndex", idx, branch.Size())
		}

		trail = append(trail, PathElem{BranchId: branchId, Branch: branch, NextChildIdx: idx})
		childId := branch.ChildIds()[idx]
		node, err = t.store.Get(ctx, childId)
		if err != nil {
			return 0, err
		}
		branchId = childId
	}
	leaf := node.(*Leaf)

	// branchId now names the id the leaf itself was fetched under: RootId
	// if the root is a leaf directly, or the last chosen child id
	// otherwise.
	return t.putIntoLeaf(ctx, cmd, allocId, branchId, leaf, trail)
}

// putIntoEmpty implements step 3 of §4.3: the one-entry leaf created the
// first time anything is ever put into a fresh tree.
func (t *Tree) putIntoEmpty(ctx context.Context, cmd WriteCommand, allocId idAllocFn) (ValueRef, error) {
	details, err := cmd.PutDetails(ctx, nil)
	if err != nil {
		return 0, commandErrorf("putDetails: %v", err)
	}
	ref, err := details.NextValueRef()
	if err != nil {
		return 0, commandErrorf("valueRefProvider: %v", err)
	}

	kvHash := t.cfg.hasher().Hash(append(append([]byte(nil), details.Details.Key...), details.Details.ValueHash...))
	newLeaf := NewLeaf(t.cfg.hasher(), []Key{details.Details.Key.clone()}, []ValueRef{ref}, []Hash{kvHash}, nil)

	path := MerklePath{newLeaf.toProof(0)}
	if err := cmd.VerifyChanges(ctx, path, false); err != nil {
		return 0, ErrVerificationRejected
	}

	task := PutTask{IncreaseDepth: true}
	task.addWrite(RootId, newLeaf)
	if err := t.commit(ctx, task); err != nil {
		return 0, err
	}
	return ref, nil
}

// putIntoLeaf implements step 5 of §4.3: apply the client's put details to
// the traversed leaf, then run the logical-put fold over the trail.
func (t *Tree) putIntoLeaf(ctx context.Context, cmd WriteCommand, allocId idAllocFn, leafId NodeId, leaf *Leaf, trail Trail) (ValueRef, error) {
	details, err := cmd.PutDetails(ctx, leaf)
	if err != nil {
		return 0, commandErrorf("putDetails: %v", err)
	}

	d := details.Details
	kvHash := t.cfg.hasher().Hash(append(append([]byte(nil), d.Key...), d.ValueHash...))

	var newLeaf *Leaf
	var ref ValueRef
	var insertionIdx int

	if d.SearchResult.IsFound() {
		idx := d.SearchResult.Idx()
		if idx < 0 || idx >= leaf.Size() {
			return 0, outOfRange("putDetails(Found)", idx, leaf.Size())
		}
		ref = leaf.ValueRefs()[idx]
		newLeaf = leaf.rewrite(t.cfg.hasher(), d.Key, ref, kvHash, idx)
		insertionIdx = idx
	} else {
		idx := d.SearchResult.Idx()
		if idx < 0 || idx > leaf.Size() {
			return 0, outOfRange("putDetails(InsertionPoint)", idx, leaf.Size())
		}
		ref, err = details.NextValueRef()
		if err != nil {
			return 0, commandErrorf("valueRefProvider: %v", err)
		}
		newLeaf = leaf.insert(t.cfg.hasher(), d.Key, ref, kvHash, idx)
		insertionIdx = idx
	}

	path, task, err := logicalPut(ctx, t.cfg, allocId, leafId, newLeaf, insertionIdx, trail)
	if err != nil {
		return 0, err
	}

	if err := cmd.VerifyChanges(ctx, path, task.WasSplitting); err != nil {
		return 0, ErrVerificationRejected
	}

	if err := t.commit(ctx, task); err != nil {
		return 0, err
	}
	return ref, nil
}

// commit persists every node in task in parallel and, only once all writes
// have completed, bumps the depth counter if the task increased it. The
// engine does not wrap these writes in a store-level transaction; see the
// open question on commit atomicity.
func (t *Tree) commit(ctx context.Context, task PutTask) error {
	for _, w := range task.NodesToSave {
		switch n := w.Node.(type) {
		case *Leaf:
			assertAscending(n.Keys(), t.cfg.AssertKeyOrder)
		case *Branch:
			assertAscending(n.Keys(), t.cfg.AssertKeyOrder)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range task.NodesToSave {
		w := w
		g.Go(func() error {
			return t.store.Put(gctx, w.Id, w.Node)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if task.IncreaseDepth {
		t.depth.Add(1)
	}
	return nil
}
