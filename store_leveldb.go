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

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// nodeKeyPrefix namespaces node records within a LevelDB instance that may
// also be used by unrelated collaborators (e.g. the key-value block store
// mentioned in §1 as an external system).
var nodeKeyPrefix = []byte("abtree/node/")

// LevelDBStore is a NodeStore backed by a syndtr/goleveldb database. It is
// the persistence layer a deployment reaches for when it needs the engine's
// nodes to survive a restart; MemStore remains the one used by tests.
type LevelDBStore struct {
	db       *leveldb.DB
	hasher   Hasher
	nextFree atomic.Uint64
}

// OpenLevelDBStore wraps an already-open db and seeds the id allocator by
// scanning the node keyspace for the largest id currently stored, per the
// "max_found + 1" rule in §4.5.
func OpenLevelDBStore(db *leveldb.DB, hasher Hasher) (*LevelDBStore, error) {
	if hasher == nil {
		hasher = Keccak256Hasher{}
	}
	s := &LevelDBStore{db: db, hasher: hasher}

	maxFound, err := scanMaxNodeId(db)
	if err != nil {
		return nil, err
	}
	s.nextFree.Store(maxFound + 1)
	return s, nil
}

func scanMaxNodeId(db *leveldb.DB) (uint64, error) {
	it := db.NewIterator(util.BytesPrefix(nodeKeyPrefix), nil)
	defer it.Release()

	found := false
	var max uint64
	for it.Next() {
		id, err := decodeNodeId(it.Key()[len(nodeKeyPrefix):])
		if err != nil {
			return 0, err
		}
		if !found || uint64(id) > max {
			max = uint64(id)
			found = true
		}
	}
	if err := it.Error(); err != nil {
		return 0, err
	}
	if !found {
		// RootId (0) is reserved but not yet written; the allocator's
		// first issued id is still 1 once it is.
		return 0, nil
	}
	return max, nil
}

func nodeKey(id NodeId) []byte {
	return append(append([]byte(nil), nodeKeyPrefix...), encodeNodeId(id)...)
}

func (s *LevelDBStore) Get(_ context.Context, id NodeId) (Node, error) {
	data, err := s.db.Get(nodeKey(id), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeNode(s.hasher, data)
}

func (s *LevelDBStore) Put(_ context.Context, id NodeId, node Node) error {
	data, err := encodeNode(s.hasher, node)
	if err != nil {
		return err
	}
	return s.db.Put(nodeKey(id), data, nil)
}

func (s *LevelDBStore) NextId(_ context.Context) (NodeId, error) {
	return NodeId(s.nextFree.Add(1) - 1), nil
}

func (s *LevelDBStore) Contains(_ context.Context, id NodeId) (bool, error) {
	return s.db.Has(nodeKey(id), nil)
}
