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

// KV is one (key, valueRef) pair yielded by a RangeIter.
type KV struct {
	Key Key
	Ref ValueRef
}

// RangeIter is the lazy, pull-style stream produced by Tree.Range. Only the
// very first Next call, which fetches the root and descends to the
// starting leaf, is serialized against concurrent Gets and Puts; every
// subsequent call follows the leaf chain's rightSibling links without
// holding the tree's mutex, so it may observe a mix of pre- and post-write
// leaves if writers are racing the scan. A client's own Merkle
// verification of each fetched leaf is what makes that safe to rely on.
//
// A RangeIter is not safe for concurrent use and is not restartable: to
// scan again, call Tree.Range a second time.
type RangeIter struct {
	tree    *Tree
	cmd     ReadCommand
	started bool
	done    bool

	leaf *Leaf
	pos  int
}

// Range starts a streaming scan under cmd's direction. The returned
// RangeIter begins at whatever insertion point cmd.SubmitLeaf reports for
// the initial leaf it is shown.
func (t *Tree) Range(cmd ReadCommand) *RangeIter {
	return &RangeIter{tree: t, cmd: cmd}
}

// Next advances the iterator and reports the next (key, ref) pair. It
// returns ok=false, err=nil once the rightmost leaf has been exhausted.
func (it *RangeIter) Next(ctx context.Context) (KV, bool, error) {
	if it.done {
		return KV{}, false, nil
	}

	if !it.started {
		if err := it.start(ctx); err != nil {
			it.done = true
			return KV{}, false, err
		}
		it.started = true
	}

	for {
		if it.leaf == nil {
			it.done = true
			return KV{}, false, nil
		}
		if it.pos < it.leaf.Size() {
			kv := KV{Key: it.leaf.Keys()[it.pos].clone(), Ref: it.leaf.ValueRefs()[it.pos]}
			it.pos++
			return kv, true, nil
		}

		nextId, ok := it.leaf.RightSibling()
		if !ok {
			it.leaf = nil
			it.done = true
			return KV{}, false, nil
		}
		next, err := it.tree.store.Get(ctx, nextId)
		if err != nil {
			it.done = true
			return KV{}, false, err
		}
		leaf, ok := next.(*Leaf)
		if !ok {
			it.done = true
			return KV{}, false, codecErrorf("rightSibling %d is not a leaf", nextId)
		}
		it.leaf = leaf
		it.pos = 0
	}
}

// start fetches the root under the tree's global mutex and descends to the
// leaf cmd.SubmitLeaf chooses, then releases the mutex before the first
// element is yielded.
func (it *RangeIter) start(ctx context.Context) error {
	t := it.tree
	if err := t.lock(ctx); err != nil {
		return err
	}
	defer t.unlock()

	root, err := t.loadOrCreateRoot(ctx)
	if err != nil {
		return err
	}

	node := root
	for {
		branch, ok := node.(*Branch)
		if !ok {
			break
		}
		idx, err := it.cmd.NextChildIndex(ctx, branch)
		if err != nil {
			return commandErrorf("nextChildIndex: %v", err)
		}
		if idx < 0 || idx >= branch.Size() {
			return outOfRange("nextChildIndex", idx, branch.Size())
		}
		node, err = t.store.Get(ctx, branch.ChildIds()[idx])
		if err != nil {
			return err
		}
	}

	leaf := node.(*Leaf)
	if leaf.Size() == 0 {
		if _, err := it.cmd.SubmitLeaf(ctx, nil); err != nil {
			return commandErrorf("submitLeaf: %v", err)
		}
		it.leaf = nil
		return nil
	}

	result, err := it.cmd.SubmitLeaf(ctx, leaf)
	if err != nil {
		return commandErrorf("submitLeaf: %v", err)
	}
	start := result.Idx()
	if start < 0 || start > leaf.Size() {
		return outOfRange("submitLeaf", start, leaf.Size())
	}

	it.leaf = leaf
	it.pos = start
	return nil
}
