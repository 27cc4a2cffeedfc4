package btree

import (
	"storemy/pkg/buffer"
	"storemy/pkg/types"
)

// pathEntry is one write-latched page held during a structural descent:
// either the header (root-id cell) or a tree page.
type pathEntry struct {
	header bool
	page   *buffer.Page
}

func (t *BTree) unpinID(id buffer.PageID, dirty bool) { t.pool.UnpinPage(id, dirty) }

// releasePath unlatches and unpins every entry, marking non-header pages
// dirty (they were on the write path).
func (t *BTree) releasePath(path []pathEntry) {
	for _, e := range path {
		e.page.Unlatch()
		if e.header {
			t.unpinID(headerPageID, true)
		} else {
			t.unpinID(e.page.ID(), true)
		}
	}
}

// releaseReadPath is releasePath's read-latch counterpart, used by GetValue.
func (t *BTree) releaseReadPath(pages []*buffer.Page) {
	for _, p := range pages {
		p.RUnlatch()
		t.unpinID(p.ID(), false)
	}
}

// findChildIndex returns the index of the child to descend into for key:
// the largest i such that children[i].key <= key (slot 0's sentinel key
// always qualifies).
func findChildIndex(n *node, key types.Field) (int, error) {
	best := 0
	for i := 1; i < len(n.children); i++ {
		cmp, err := compareKeys(n.children[i].key, key)
		if err != nil {
			return 0, err
		}
		if cmp <= 0 {
			best = i
		} else {
			break
		}
	}
	return best, nil
}

// findLeafSlot returns (index, found): the position of key in a leaf's
// sorted entries, or the insertion point if absent.
func findLeafSlot(n *node, key types.Field) (int, bool, error) {
	for i, e := range n.leaves {
		cmp, err := compareKeys(e.key, key)
		if err != nil {
			return 0, false, err
		}
		if cmp == 0 {
			return i, true, nil
		}
		if cmp > 0 {
			return i, false, nil
		}
	}
	return len(n.leaves), false, nil
}

// GetValue performs a point lookup, crab-walking read latches from the
// root-id cell down to the leaf.
func (t *BTree) GetValue(key types.Field) (RID, bool, error) {
	header := t.pool.FetchPage(headerPageID)
	header.RLatch()
	root := readHeader(header)
	if root == buffer.InvalidPageID {
		header.RUnlatch()
		t.unpinID(headerPageID, false)
		return RID{}, false, nil
	}

	cur := t.pool.FetchPage(root)
	cur.RLatch()
	header.RUnlatch()
	t.unpinID(headerPageID, false)

	for {
		n := decode(cur)
		if n.isLeaf() {
			idx, found, err := findLeafSlot(n, key)
			cur.RUnlatch()
			t.unpinID(n.id, false)
			if err != nil {
				return RID{}, false, err
			}
			if !found {
				return RID{}, false, nil
			}
			return n.leaves[idx].rid, true, nil
		}

		idx, err := findChildIndex(n, key)
		if err != nil {
			cur.RUnlatch()
			t.unpinID(n.id, false)
			return RID{}, false, err
		}
		childID := n.children[idx].child
		child := t.pool.FetchPage(childID)
		child.RLatch()
		cur.RUnlatch()
		t.unpinID(n.id, false)
		cur = child
	}
}

// isSafeForInsert reports whether n can absorb one more entry without
// needing to split (and thus without touching its parent).
func (t *BTree) isSafeForInsert(n *node) bool {
	if n.isLeaf() {
		return n.size()+1 < t.cfg.LeafMax
	}
	return n.size() < t.cfg.InternalMax
}

// isSafeForDelete reports whether n can lose one more entry without
// underflowing below its minimum occupancy.
func (t *BTree) isSafeForDelete(n *node) bool {
	if n.isLeaf() {
		return n.size() > t.cfg.leafMin()
	}
	return n.size() > t.cfg.internalMin()
}

// Insert adds (key, rid). Returns false without error if key is already
// present (duplicate-free index, §4.4).
func (t *BTree) Insert(key types.Field, rid RID) (bool, error) {
	header := t.fetchHeaderForWrite()
	root := readHeader(header)

	if root == buffer.InvalidPageID {
		leafPage := t.pool.NewPage()
		leafPage.Latch()
		leaf := newLeafNode(leafPage.ID(), key.Type(), buffer.InvalidPageID)
		leaf.leaves = []leafEntry{{key: key, rid: rid}}
		leaf.encode(leafPage)
		leafPage.Unlatch()
		t.unpinID(leaf.id, true)

		t.setRootIDLocked(header, leaf.id)
		t.releaseHeaderWrite(header, true)
		return true, nil
	}

	path := []pathEntry{{header: true, page: header}}
	curID := root

	for {
		cur := t.pool.FetchPage(curID)
		cur.Latch()
		n := decode(cur)
		path = append(path, pathEntry{page: cur})

		if t.isSafeForInsert(n) {
			t.releasePath(path[:len(path)-1])
			path = path[len(path)-1:]
		}

		if n.isLeaf() {
			idx, found, err := findLeafSlot(n, key)
			if err != nil {
				t.releasePath(path)
				return false, err
			}
			if found {
				t.releasePath(path)
				return false, nil
			}
			n.leaves = append(n.leaves, leafEntry{})
			copy(n.leaves[idx+1:], n.leaves[idx:])
			n.leaves[idx] = leafEntry{key: key, rid: rid}

			if n.size() <= t.cfg.LeafMax {
				n.encode(cur)
				t.releasePath(path)
				return true, nil
			}
			return true, t.splitLeaf(path, n)
		}

		idx, err := findChildIndex(n, key)
		if err != nil {
			t.releasePath(path)
			return false, err
		}
		curID = n.children[idx].child
	}
}

// Remove deletes key. It is not an error to remove an absent key; it is a
// no-op.
func (t *BTree) Remove(key types.Field) error {
	header := t.fetchHeaderForWrite()
	root := readHeader(header)
	if root == buffer.InvalidPageID {
		t.releaseHeaderWrite(header, false)
		return nil
	}

	path := []pathEntry{{header: true, page: header}}
	curID := root

	for {
		cur := t.pool.FetchPage(curID)
		cur.Latch()
		n := decode(cur)
		path = append(path, pathEntry{page: cur})

		if t.isSafeForDelete(n) {
			t.releasePath(path[:len(path)-1])
			path = path[len(path)-1:]
		}

		if n.isLeaf() {
			idx, found, err := findLeafSlot(n, key)
			if err != nil {
				t.releasePath(path)
				return err
			}
			if !found {
				t.releasePath(path)
				return nil
			}
			n.leaves = append(n.leaves[:idx], n.leaves[idx+1:]...)
			n.encode(cur)
			return t.coalesceOrRedistribute(path, n)
		}

		idx, err := findChildIndex(n, key)
		if err != nil {
			t.releasePath(path)
			return err
		}
		curID = n.children[idx].child
	}
}
