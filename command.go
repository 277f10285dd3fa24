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

// SearchResult is what a command returns after inspecting a leaf: either
// the leaf already holds the key at Idx (Found), or Idx is where it would
// be inserted to keep the leaf's keys ascending (InsertionPoint).
type SearchResult struct {
	found bool
	idx   int
}

// Found builds a SearchResult reporting a match at idx.
func Found(idx int) SearchResult { return SearchResult{found: true, idx: idx} }

// InsertionPoint builds a SearchResult reporting no match, with idx the
// position a new entry should occupy.
func InsertionPoint(idx int) SearchResult { return SearchResult{found: false, idx: idx} }

// IsFound reports whether the result is a Found(idx).
func (r SearchResult) IsFound() bool { return r.found }

// Idx is the affected index, whichever variant this is.
func (r SearchResult) Idx() int { return r.idx }

// ValueRefProvider mints a fresh, monotonic ValueRef on demand. The engine
// calls it only when an insertion (not an update) needs a new ref.
type ValueRefProvider func() (ValueRef, error)

// ClientPutDetails is what the client knows about the key being put: the
// key itself, a hash of the value, and where it belongs in the leaf.
type ClientPutDetails struct {
	Key          Key
	ValueHash    Hash
	SearchResult SearchResult
}

// BTreePutDetails is the full answer to a WriteCommand.PutDetails call.
type BTreePutDetails struct {
	Details          ClientPutDetails
	NextValueRef ValueRefProvider
}

// ReadCommand is the oracle consulted by Get and Range. It is the sole
// source of ordering decisions during a read traversal.
type ReadCommand interface {
	// NextChildIndex inspects branch and returns which child to descend
	// into next. The returned index must be in [0, branch.Size()).
	NextChildIndex(ctx context.Context, branch *Branch) (int, error)

	// SubmitLeaf inspects leaf (nil for an empty tree) and reports where
	// the sought key is, or would be inserted.
	SubmitLeaf(ctx context.Context, leaf *Leaf) (SearchResult, error)
}

// WriteCommand is the oracle consulted by Put. It is the sole source of
// ordering and authentication decisions during a write traversal.
type WriteCommand interface {
	// NextChildIndex is identical in contract to ReadCommand's.
	NextChildIndex(ctx context.Context, branch *Branch) (int, error)

	// PutDetails inspects leaf (nil for an empty tree) and reports the
	// key, value hash and search result to apply, plus a ref provider
	// for use if the search result is an InsertionPoint.
	PutDetails(ctx context.Context, leaf *Leaf) (BTreePutDetails, error)

	// VerifyChanges hands the client the Merkle proof computed for the
	// pending mutation. The engine does not commit until this returns
	// nil; a non-nil error aborts the put without mutating any
	// persisted state.
	VerifyChanges(ctx context.Context, path MerklePath, wasSplitting bool) error
}
