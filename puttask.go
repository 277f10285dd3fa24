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

// nodeWrite is one (id, node) pair awaiting persistence.
type nodeWrite struct {
	Id   NodeId
	Node Node
}

// PutTask is the transient commit descriptor produced by logicalPut: the
// nodes to persist for a single put, whether the root's depth increases,
// and whether any node on the path split.
type PutTask struct {
	NodesToSave   []nodeWrite
	IncreaseDepth bool
	WasSplitting  bool
}

func (t *PutTask) addWrite(id NodeId, n Node) {
	t.NodesToSave = append(t.NodesToSave, nodeWrite{Id: id, Node: n})
}

// merge returns a new task holding other's writes followed by t's (t itself
// is left unchanged), and widens the two boolean flags
// (a descendant split or depth increase is never un-observed by an
// ancestor's contribution to the same task).
func (t *PutTask) merge(other PutTask) PutTask {
	out := PutTask{
		NodesToSave:   append(append([]nodeWrite(nil), other.NodesToSave...), t.NodesToSave...),
		IncreaseDepth: t.IncreaseDepth || other.IncreaseDepth,
		WasSplitting:  t.WasSplitting || other.WasSplitting,
	}
	return out
}
