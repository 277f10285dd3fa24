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
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// NodeStore is the engine's view of the backing key-value block store:
// node persistence plus monotonic id allocation. Errors are surfaced
// unchanged to the caller; the engine does not retry or interpret them.
type NodeStore interface {
	Get(ctx context.Context, id NodeId) (Node, error)
	Put(ctx context.Context, id NodeId, node Node) error
	NextId(ctx context.Context) (NodeId, error)
	Contains(ctx context.Context, id NodeId) (bool, error)
}

// ErrNotFound is returned by a NodeStore when no node is persisted under
// the requested id.
var ErrNotFound = fmt.Errorf("abtree: node not found")

// MemStore is an in-memory NodeStore backed by a map, useful for tests and
// for embedding the engine without a real key-value backend. A bitset
// tracks which ids have been written so Contains is O(1) amortized; NextId
// hands out ids from a counter that every Put advances past the id written.
type MemStore struct {
	mu       sync.RWMutex
	nodes    map[NodeId]Node
	present  *bitset.BitSet
	nextFree uint64
}

// NewMemStore returns an empty MemStore whose id allocator starts at
// RootId.
func NewMemStore() *MemStore {
	return &MemStore{
		nodes:   make(map[NodeId]Node),
		present: bitset.New(1024),
	}
}

func (s *MemStore) Get(_ context.Context, id NodeId) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

func (s *MemStore) Put(_ context.Context, id NodeId, node Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[id] = node
	s.present.Set(uint(id))
	if uint64(id)+1 > s.nextFree {
		s.nextFree = uint64(id) + 1
	}
	return nil
}

func (s *MemStore) NextId(_ context.Context) (NodeId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextFree
	s.nextFree++
	return NodeId(id), nil
}

func (s *MemStore) Contains(_ context.Context, id NodeId) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.present.Test(uint(id)), nil
}
