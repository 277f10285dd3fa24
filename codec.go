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
	"encoding/binary"

	"github.com/karalabe/ssz"
)

const (
	maxEntriesPerNode = 4096
	maxKeyLen         = 512
	hashLen           = 32
)

// encodeNodeId renders id as a fixed 8-byte big-endian key, per the wire
// contract in §6 of the node-id format.
func encodeNodeId(id NodeId) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return buf[:]
}

func decodeNodeId(data []byte) (NodeId, error) {
	if len(data) != 8 {
		return 0, codecErrorf("node id must be 8 bytes, got %d", len(data))
	}
	return NodeId(binary.BigEndian.Uint64(data)), nil
}

// sszLeaf is the on-disk SSZ envelope for a Leaf. Keys and kv-checksums
// are variable-length lists (a client-chosen key length isn't known
// statically, so they ride as length-prefixed dynamic fields rather than
// a fixed-size SSZ vector).
type sszLeaf struct {
	Keys         [][]byte `ssz-max:"4096,512"`
	ValueRefs    []uint64 `ssz-max:"4096"`
	KVChecksums  [][]byte `ssz-max:"4096,32"`
	HasSibling   bool
	RightSibling uint64
}

func (s *sszLeaf) SizeSSZ(sizer *ssz.Sizer) uint32 {
	return ssz.SizeSliceOfDynamicBytes(sizer, s.Keys) +
		ssz.SizeSliceOfUint64s(sizer, s.ValueRefs) +
		ssz.SizeSliceOfStaticBytes(sizer, s.KVChecksums) +
		1 + 8
}

func (s *sszLeaf) DefineSSZ(codec *ssz.Codec) {
	ssz.DefineSliceOfDynamicBytesOffset(codec, &s.Keys, maxEntriesPerNode, maxKeyLen)
	ssz.DefineSliceOfUint64sOffset(codec, &s.ValueRefs, maxEntriesPerNode)
	ssz.DefineSliceOfStaticBytesOffset(codec, &s.KVChecksums, maxEntriesPerNode)
	ssz.DefineBool(codec, &s.HasSibling)
	ssz.DefineUint64(codec, &s.RightSibling)
}

// sszBranch is the on-disk SSZ envelope for a Branch.
type sszBranch struct {
	Keys        [][]byte `ssz-max:"4096,512"`
	ChildIds    []uint64 `ssz-max:"4096"`
	ChildHashes [][]byte `ssz-max:"4096,32"`
}

func (s *sszBranch) SizeSSZ(sizer *ssz.Sizer) uint32 {
	return ssz.SizeSliceOfDynamicBytes(sizer, s.Keys) +
		ssz.SizeSliceOfUint64s(sizer, s.ChildIds) +
		ssz.SizeSliceOfStaticBytes(sizer, s.ChildHashes)
}

func (s *sszBranch) DefineSSZ(codec *ssz.Codec) {
	ssz.DefineSliceOfDynamicBytesOffset(codec, &s.Keys, maxEntriesPerNode, maxKeyLen)
	ssz.DefineSliceOfUint64sOffset(codec, &s.ChildIds, maxEntriesPerNode)
	ssz.DefineSliceOfStaticBytesOffset(codec, &s.ChildHashes, maxEntriesPerNode)
}

// encodeNode serializes a Node to bytes: a one-byte tag followed by its
// SSZ-encoded envelope.
func encodeNode(hasher Hasher, n Node) ([]byte, error) {
	switch v := n.(type) {
	case *Leaf:
		env := &sszLeaf{
			Keys:        toByteSlices(v.keys),
			ValueRefs:   toUint64Slice(v.valueRefs),
			KVChecksums: toByteSlices(v.kvChecksums),
		}
		if id, ok := v.RightSibling(); ok {
			env.HasSibling = true
			env.RightSibling = uint64(id)
		}
		body, err := ssz.EncodeToBytes(env)
		if err != nil {
			return nil, codecErrorf("encode leaf: %v", err)
		}
		return append([]byte{byte(leafTag)}, body...), nil

	case *Branch:
		env := &sszBranch{
			Keys:        toByteSlices(v.keys),
			ChildIds:    toUint64SliceIds(v.childIds),
			ChildHashes: toByteSlices(v.childHashes),
		}
		body, err := ssz.EncodeToBytes(env)
		if err != nil {
			return nil, codecErrorf("encode branch: %v", err)
		}
		return append([]byte{byte(branchTag)}, body...), nil

	default:
		return nil, codecErrorf("unknown node type %T", n)
	}
}

// decodeNode parses bytes produced by encodeNode back into a Node.
func decodeNode(hasher Hasher, data []byte) (Node, error) {
	if len(data) < 1 {
		return nil, codecErrorf("empty node payload")
	}
	tag, body := nodeTag(data[0]), data[1:]

	switch tag {
	case leafTag:
		var env sszLeaf
		if err := ssz.DecodeFromBytes(body, &env); err != nil {
			return nil, codecErrorf("decode leaf: %v", err)
		}
		var sibling *NodeId
		if env.HasSibling {
			sibling = idPtr(NodeId(env.RightSibling))
		}
		return NewLeaf(hasher, fromByteSlices[Key](env.Keys), fromUint64Slice(env.ValueRefs), fromByteSlices[Hash](env.KVChecksums), sibling), nil

	case branchTag:
		var env sszBranch
		if err := ssz.DecodeFromBytes(body, &env); err != nil {
			return nil, codecErrorf("decode branch: %v", err)
		}
		return NewBranch(hasher, fromByteSlices[Key](env.Keys), fromUint64SliceIds(env.ChildIds), fromByteSlices[Hash](env.ChildHashes)), nil

	default:
		return nil, codecErrorf("unknown node tag %d", tag)
	}
}

func toByteSlices[T ~[]byte](in []T) [][]byte {
	out := make([][]byte, len(in))
	for i, v := range in {
		out[i] = append([]byte(nil), v...)
	}
	return out
}

func fromByteSlices[T ~[]byte](in [][]byte) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(append([]byte(nil), v...))
	}
	return out
}

func toUint64Slice(in []ValueRef) []uint64 {
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = uint64(v)
	}
	return out
}

func fromUint64Slice(in []uint64) []ValueRef {
	out := make([]ValueRef, len(in))
	for i, v := range in {
		out[i] = ValueRef(v)
	}
	return out
}

func toUint64SliceIds(in []NodeId) []uint64 {
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = uint64(v)
	}
	return out
}

func fromUint64SliceIds(in []uint64) []NodeId {
	out := make([]NodeId, len(in))
	for i, v := range in {
		out[i] = NodeId(v)
	}
	return out
}
