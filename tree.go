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
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Tree is an authenticated, order-preserving search tree over a pluggable
// NodeStore. The ordering of keys is supplied by the caller's command at
// every hop; the tree itself only ever compares an index against bounds.
//
// A Tree serializes all of its Get and Put calls, and the initial root
// fetch of every Range, behind a single-permit semaphore: at most one
// logical operation is ever descending the tree at a time. This mirrors a
// cooperative single-mutator runtime rather than a reader/writer lock,
// because a Range's sibling reads deliberately run unserialized once the
// stream has started (see RangeIter).
type Tree struct {
	store  NodeStore
	cfg    Config
	mu     *semaphore.Weighted
	depth  atomic.Int64
}

// NewTree wires a Tree to the given store and configuration. cfg is
// validated eagerly so a misconfigured arity/alpha fails at construction
// rather than on the first put.
func NewTree(store NodeStore, cfg Config) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tree{
		store: store,
		cfg:   cfg,
		mu:    semaphore.NewWeighted(1),
	}, nil
}

// GetDepth returns the current tree depth. It increases by at most one
// per Put: when the first entry is put into an empty tree, or when the
// root itself splits.
func (t *Tree) GetDepth() int {
	return int(t.depth.Load())
}

// GetMerkleRoot returns the checksum of whatever node currently lives at
// RootId. It does not acquire the mutex: callers that need a root
// consistent with a specific Get/Put should read it from within their own
// command callbacks instead.
func (t *Tree) GetMerkleRoot(ctx context.Context) (Hash, error) {
	root, err := t.store.Get(ctx, RootId)
	if err != nil {
		if err == ErrNotFound {
			return Hash{}, nil
		}
		return nil, err
	}
	return root.Checksum(), nil
}

func (t *Tree) lock(ctx context.Context) error {
	return t.mu.Acquire(ctx, 1)
}

func (t *Tree) unlock() {
	t.mu.Release(1)
}

// loadOrCreateRoot fetches the root, auto-creating an empty leaf at RootId
// if the store has never been written to. The auto-create is itself a
// one-node write committed through the normal store path, matching §4.3.
func (t *Tree) loadOrCreateRoot(ctx context.Context) (Node, error) {
	root, err := t.store.Get(ctx, RootId)
	if err == nil {
		return root, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	empty := NewLeaf(t.cfg.hasher(), nil, nil, nil, nil)
	if err := t.store.Put(ctx, RootId, empty); err != nil {
		return nil, err
	}
	return empty, nil
}

// Get descends the tree under cmd's direction and returns the ValueRef
// stored for the key cmd is looking for, or false if cmd reports no match.
func (t *Tree) Get(ctx context.Context, cmd ReadCommand) (ValueRef, bool, error) {
	if err := t.lock(ctx); err != nil {
		return 0, false, err
	}
	defer t.unlock()

	root, err := t.loadOrCreateRoot(ctx)
	if err != nil {
		return 0, false, err
	}

	node := root
	for {
		branch, ok := node.(*Branch)
		if !ok {
			break
		}
		idx, err := cmd.NextChildIndex(ctx, branch)
		if err != nil {
			return 0, false, commandErrorf("nextChildIndex: %v", err)
		}
		if idx < 0 || idx >= branch.Size() {
			return 0, false, outOfRange("nextChildIndex", idx, branch.Size())
		}
		node, err = t.store.Get(ctx, branch.ChildIds()[idx])
		if err != nil {
			return 0, false, err
		}
	}

	leaf := node.(*Leaf)
	if leaf.Size() == 0 {
		if _, err := cmd.SubmitLeaf(ctx, nil); err != nil {
			return 0, false, commandErrorf("submitLeaf: %v", err)
		}
		return 0, false, nil
	}

	result, err := cmd.SubmitLeaf(ctx, leaf)
	if err != nil {
		return 0, false, commandErrorf("submitLeaf: %v", err)
	}
	if !result.IsFound() {
		return 0, false, nil
	}
	if result.Idx() < 0 || result.Idx() >= leaf.Size() {
		return 0, false, outOfRange("submitLeaf", result.Idx(), leaf.Size())
	}
	return leaf.ValueRefs()[result.Idx()], true, nil
}
