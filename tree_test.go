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
	"bytes"
	"context"
	"fmt"
	"testing"
)

// lexCommand is a lexicographic-ordering oracle for exercising Tree against
// plain byte-string keys in tests. Production callers supply their own
// command reflecting whatever external ordering they authenticate against;
// this one exists only so these tests don't have to fake one out ad hoc.
type lexCommand struct {
	target    Key
	value     []byte
	hasher    Hasher
	nextRef   *ValueRef
	verifyErr error
	verified  int
}

func newLexCommand(hasher Hasher, nextRef *ValueRef, target Key, value []byte) *lexCommand {
	return &lexCommand{target: target, value: value, hasher: hasher, nextRef: nextRef}
}

func (c *lexCommand) NextChildIndex(_ context.Context, branch *Branch) (int, error) {
	keys := branch.Keys()
	for i, key := range keys {
		if bytes.Compare(c.target, key) <= 0 {
			return i, nil
		}
	}
	return len(keys) - 1, nil
}

func (c *lexCommand) searchLeaf(leaf *Leaf) SearchResult {
	if leaf == nil {
		return InsertionPoint(0)
	}
	keys := leaf.Keys()
	for i, key := range keys {
		cmp := bytes.Compare(c.target, key)
		if cmp == 0 {
			return Found(i)
		}
		if cmp < 0 {
			return InsertionPoint(i)
		}
	}
	return InsertionPoint(len(keys))
}

func (c *lexCommand) SubmitLeaf(_ context.Context, leaf *Leaf) (SearchResult, error) {
	return c.searchLeaf(leaf), nil
}

func (c *lexCommand) PutDetails(_ context.Context, leaf *Leaf) (BTreePutDetails, error) {
	valueHash := c.hasher.Hash(c.value)
	return BTreePutDetails{
		Details: ClientPutDetails{
			Key:          c.target,
			ValueHash:    valueHash,
			SearchResult: c.searchLeaf(leaf),
		},
		NextValueRef: func() (ValueRef, error) {
			ref := *c.nextRef
			*c.nextRef++
			return ref, nil
		},
	}, nil
}

func (c *lexCommand) VerifyChanges(_ context.Context, _ MerklePath, _ bool) error {
	c.verified++
	return c.verifyErr
}

func newTestTree(t *testing.T, arity int) (*Tree, *MemStore, *ValueRef) {
	t.Helper()
	store := NewMemStore()
	cfg := Config{Arity: arity, Alpha: 0.25, Hasher: Keccak256Hasher{}}
	tree, err := NewTree(store, cfg)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	var nextRef ValueRef = 1
	return tree, store, &nextRef
}

func putStr(t *testing.T, tree *Tree, nextRef *ValueRef, key, value string) ValueRef {
	t.Helper()
	cmd := newLexCommand(Keccak256Hasher{}, nextRef, Key(key), []byte(value))
	ref, err := tree.Put(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Put(%q): %v", key, err)
	}
	return ref
}

func getStr(t *testing.T, tree *Tree, key string) (ValueRef, bool) {
	t.Helper()
	var nextRef ValueRef
	cmd := newLexCommand(Keccak256Hasher{}, &nextRef, Key(key), nil)
	ref, ok, err := tree.Get(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Get(%q): %v", key, err)
	}
	return ref, ok
}

func TestPutThenGetRoundTrip(t *testing.T) {
	tree, _, nextRef := newTestTree(t, 64)

	ref := putStr(t, tree, nextRef, "hello", "world")
	got, ok := getStr(t, tree, "hello")
	if !ok {
		t.Fatal("hello not found after put")
	}
	if got != ref {
		t.Fatalf("ref = %d, want %d", got, ref)
	}

	if _, ok := getStr(t, tree, "missing"); ok {
		t.Fatal("missing key reported found")
	}
}

func TestPutIsIdempotentOnRewrite(t *testing.T) {
	tree, _, nextRef := newTestTree(t, 64)

	ref1 := putStr(t, tree, nextRef, "a", "v1")
	ref2 := putStr(t, tree, nextRef, "a", "v2")
	if ref1 != ref2 {
		t.Fatalf("rewrite changed the value ref: %d -> %d", ref1, ref2)
	}

	root1, err := tree.GetMerkleRoot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ref3 := putStr(t, tree, nextRef, "a", "v2")
	if ref3 != ref1 {
		t.Fatalf("repeated identical rewrite changed the ref")
	}
	root2, err := tree.GetMerkleRoot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !root1.Equal(root2) {
		t.Fatal("two identical rewrites produced different roots")
	}
}

func TestPutManyCausesSplitsAndKeepsEveryKeyReachable(t *testing.T) {
	tree, _, nextRef := newTestTree(t, 4)

	var keys []string
	for i := 0; i < 40; i++ {
		keys = append(keys, fmt.Sprintf("key-%03d", i))
	}
	for _, key := range keys {
		putStr(t, tree, nextRef, key, "v-"+key)
	}
	if tree.GetDepth() <= 1 {
		t.Fatalf("depth = %d, want > 1 after %d inserts at arity 4", tree.GetDepth(), len(keys))
	}

	for _, key := range keys {
		if _, ok := getStr(t, tree, key); !ok {
			t.Fatalf("key %q missing after bulk insert", key)
		}
	}
}

func TestRangeScanIsOrderedAndComplete(t *testing.T) {
	tree, _, nextRef := newTestTree(t, 4)

	inserted := []string{"b", "d", "f", "h", "j", "l", "n", "p", "r", "t"}
	for _, key := range inserted {
		putStr(t, tree, nextRef, key, "v-"+key)
	}

	cmd := newLexCommand(Keccak256Hasher{}, nextRef, Key("e"), nil)
	it := tree.Range(cmd)

	var got []string
	for {
		kv, ok, err := it.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, string(kv.Key))
	}

	want := []string{"f", "h", "j", "l", "n", "p", "r", "t"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestVerifyChangesRejectionAbortsPut(t *testing.T) {
	tree, store, nextRef := newTestTree(t, 64)

	putStr(t, tree, nextRef, "a", "v1")
	rootBefore, err := tree.GetMerkleRoot(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	cmd := newLexCommand(Keccak256Hasher{}, nextRef, Key("b"), []byte("v2"))
	cmd.verifyErr = fmt.Errorf("client refuses")
	if _, err := tree.Put(context.Background(), cmd); err == nil {
		t.Fatal("expected Put to fail when VerifyChanges rejects")
	}
	if cmd.verified != 1 {
		t.Fatalf("VerifyChanges called %d times, want 1", cmd.verified)
	}

	rootAfter, err := tree.GetMerkleRoot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !rootBefore.Equal(rootAfter) {
		t.Fatal("rejected put mutated the persisted root")
	}
	if ok, err := store.Contains(context.Background(), NodeId(2)); err == nil && ok {
		t.Fatal("rejected put allocated a persisted node")
	}
}

func TestGetOnEmptyTree(t *testing.T) {
	tree, _, _ := newTestTree(t, 64)
	if _, ok := getStr(t, tree, "anything"); ok {
		t.Fatal("empty tree reported a key found")
	}
	root, err := tree.GetMerkleRoot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !root.Equal(Keccak256Hasher{}.Hash(nil)) {
		t.Fatalf("empty tree root should be hash of no kv-checksums")
	}
}
