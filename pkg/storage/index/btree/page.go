package btree

import (
	"bytes"
	"encoding/binary"

	"storemy/pkg/buffer"
	"storemy/pkg/types"
)

type pageKind byte

const (
	kindLeaf     pageKind = 1
	kindInternal pageKind = 2
)

// headerFields: kind(1) + keyType(1) + parent(8) + next(8) + prev(8) + count(4)
const pageHeaderSize = 1 + 1 + 8 + 8 + 8 + 4

// leafEntry is one (key, RID) pair in a leaf page, in sorted key order.
type leafEntry struct {
	key types.Field
	rid RID
}

// childEntry is one (separator key, child page id) pair in an internal
// page. Slot 0's key is the unused sentinel per §3.
type childEntry struct {
	key   types.Field // nil at slot 0
	child buffer.PageID
}

// node is the decoded, in-memory form of a page: exactly one of leaves/
// children is populated depending on kind.
type node struct {
	id       buffer.PageID
	kind     pageKind
	keyType  types.Type
	parent   buffer.PageID
	next     buffer.PageID // leaf only
	prev     buffer.PageID // leaf only
	leaves   []leafEntry
	children []childEntry
}

func (n *node) isLeaf() bool { return n.kind == kindLeaf }

func (n *node) size() int {
	if n.isLeaf() {
		return len(n.leaves)
	}
	return len(n.children)
}

func newLeafNode(id buffer.PageID, keyType types.Type, parent buffer.PageID) *node {
	return &node{id: id, kind: kindLeaf, keyType: keyType, parent: parent,
		next: buffer.InvalidPageID, prev: buffer.InvalidPageID}
}

func newInternalNode(id buffer.PageID, keyType types.Type, parent buffer.PageID) *node {
	return &node{id: id, kind: kindInternal, keyType: keyType, parent: parent}
}

// encode writes n's logical content into p's byte buffer. Caller must
// hold p's write latch.
func (n *node) encode(p *buffer.Page) {
	var buf bytes.Buffer
	buf.WriteByte(byte(n.kind))
	buf.WriteByte(byte(n.keyType))
	binary.Write(&buf, binary.BigEndian, uint64(n.parent))
	binary.Write(&buf, binary.BigEndian, uint64(n.next))
	binary.Write(&buf, binary.BigEndian, uint64(n.prev))
	binary.Write(&buf, binary.BigEndian, uint32(n.size()))

	if n.isLeaf() {
		for _, e := range n.leaves {
			e.key.Serialize(&buf)
			binary.Write(&buf, binary.BigEndian, uint64(e.rid.PageID))
			binary.Write(&buf, binary.BigEndian, e.rid.Slot)
		}
	} else {
		for i, c := range n.children {
			if i > 0 {
				c.key.Serialize(&buf)
			}
			binary.Write(&buf, binary.BigEndian, uint64(c.child))
		}
	}

	data := p.Data()
	copy(data[:], buf.Bytes())
}

// decode reads a node out of p's byte buffer. Caller must hold at least
// p's read latch.
func decode(p *buffer.Page) *node {
	data := p.Data()
	r := bytes.NewReader(data[:])

	kindByte, _ := r.ReadByte()
	keyTypeByte, _ := r.ReadByte()
	var parent, next, prev uint64
	var count uint32
	binary.Read(r, binary.BigEndian, &parent)
	binary.Read(r, binary.BigEndian, &next)
	binary.Read(r, binary.BigEndian, &prev)
	binary.Read(r, binary.BigEndian, &count)

	n := &node{
		id:      p.ID(),
		kind:    pageKind(kindByte),
		keyType: types.Type(keyTypeByte),
		parent:  buffer.PageID(int64(parent)),
		next:    buffer.PageID(int64(next)),
		prev:    buffer.PageID(int64(prev)),
	}

	if n.isLeaf() {
		n.leaves = make([]leafEntry, 0, count)
		for i := uint32(0); i < count; i++ {
			key, _ := types.ParseField(r, n.keyType)
			var pid uint64
			var slot uint32
			binary.Read(r, binary.BigEndian, &pid)
			binary.Read(r, binary.BigEndian, &slot)
			n.leaves = append(n.leaves, leafEntry{key: key, rid: RID{PageID: buffer.PageID(int64(pid)), Slot: slot}})
		}
	} else {
		n.children = make([]childEntry, 0, count)
		for i := uint32(0); i < count; i++ {
			var key types.Field
			if i > 0 {
				key, _ = types.ParseField(r, n.keyType)
			}
			var pid uint64
			binary.Read(r, binary.BigEndian, &pid)
			n.children = append(n.children, childEntry{key: key, child: buffer.PageID(int64(pid))})
		}
	}
	return n
}
