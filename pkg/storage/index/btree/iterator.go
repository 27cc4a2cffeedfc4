package btree

import (
	"storemy/pkg/buffer"
	"storemy/pkg/types"
)

// Iterator walks leaves in ascending key order. It holds at most one
// read-latched leaf at a time (§4.4's "Range iteration": no latch
// coupling during iteration, just one held leaf).
type Iterator struct {
	t       *BTree
	page    *buffer.Page
	node    *node
	pos     int
	atEnd   bool
}

// Begin returns an iterator positioned at the leftmost leaf's first
// entry.
func (t *BTree) Begin() (*Iterator, error) {
	root := t.getRootID()
	if root == buffer.InvalidPageID {
		return &Iterator{t: t, atEnd: true}, nil
	}

	cur := t.pool.FetchPage(root)
	cur.RLatch()
	n := decode(cur)
	for !n.isLeaf() {
		childID := n.children[0].child
		child := t.pool.FetchPage(childID)
		child.RLatch()
		cur.RUnlatch()
		t.unpinID(n.id, false)
		cur = child
		n = decode(cur)
	}
	return &Iterator{t: t, page: cur, node: n, pos: 0, atEnd: len(n.leaves) == 0 && n.next == buffer.InvalidPageID}, nil
}

// BeginAt returns an iterator positioned at the first entry whose key is
// >= key.
func (t *BTree) BeginAt(key types.Field) (*Iterator, error) {
	root := t.getRootID()
	if root == buffer.InvalidPageID {
		return &Iterator{t: t, atEnd: true}, nil
	}

	cur := t.pool.FetchPage(root)
	cur.RLatch()
	n := decode(cur)
	for !n.isLeaf() {
		idx, err := findChildIndex(n, key)
		if err != nil {
			cur.RUnlatch()
			t.unpinID(n.id, false)
			return nil, err
		}
		childID := n.children[idx].child
		child := t.pool.FetchPage(childID)
		child.RLatch()
		cur.RUnlatch()
		t.unpinID(n.id, false)
		cur = child
		n = decode(cur)
	}

	pos, _, err := findLeafSlot(n, key)
	if err != nil {
		cur.RUnlatch()
		t.unpinID(n.id, false)
		return nil, err
	}
	it := &Iterator{t: t, page: cur, node: n, pos: pos}
	it.skipToNextLeafIfExhausted()
	return it, nil
}

func (it *Iterator) skipToNextLeafIfExhausted() {
	for it.node != nil && it.pos >= len(it.node.leaves) {
		if it.node.next == buffer.InvalidPageID {
			it.page.RUnlatch()
			it.t.unpinID(it.node.id, false)
			it.page, it.node = nil, nil
			it.atEnd = true
			return
		}
		nextID := it.node.next
		nextPage := it.t.pool.FetchPage(nextID)
		nextPage.RLatch()
		it.page.RUnlatch()
		it.t.unpinID(it.node.id, false)
		it.page = nextPage
		it.node = decode(nextPage)
		it.pos = 0
	}
}

// IsEnd reports whether the iterator has exhausted the leaf chain.
func (it *Iterator) IsEnd() bool {
	return it.atEnd || it.node == nil
}

// Key returns the current entry's key. Must not be called when IsEnd().
func (it *Iterator) Key() types.Field { return it.node.leaves[it.pos].key }

// RID returns the current entry's RID. Must not be called when IsEnd().
func (it *Iterator) RID() RID { return it.node.leaves[it.pos].rid }

// Next advances the iterator by one entry.
func (it *Iterator) Next() {
	if it.IsEnd() {
		return
	}
	it.pos++
	it.skipToNextLeafIfExhausted()
}

// Close releases the iterator's held leaf latch, if any.
func (it *Iterator) Close() {
	if it.page != nil {
		it.page.RUnlatch()
		it.t.unpinID(it.node.id, false)
		it.page, it.node = nil, nil
	}
	it.atEnd = true
}
