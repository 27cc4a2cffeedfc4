package btree

import (
	"storemy/pkg/buffer"
	"storemy/pkg/types"
)

// setParentOf updates id's parent pointer in place.
func (t *BTree) setParentOf(id, parentID buffer.PageID) {
	p := t.pool.FetchPage(id)
	p.Latch()
	n := decode(p)
	n.parent = parentID
	n.encode(p)
	p.Unlatch()
	t.unpinID(id, true)
}

func indexOfChild(n *node, childID buffer.PageID) int {
	for i, c := range n.children {
		if c.child == childID {
			return i
		}
	}
	return -1
}

// splitLeaf splits an overflowing leaf (path's last entry) in half,
// allocates the new right sibling, relinks the leaf list, and propagates
// the separator to the parent.
func (t *BTree) splitLeaf(path []pathEntry, leaf *node) error {
	curEntry := path[len(path)-1]
	ancestors := path[:len(path)-1]

	total := len(leaf.leaves)
	mid := (total + 1) / 2

	rightPage := t.pool.NewPage()
	rightPage.Latch()
	right := newLeafNode(rightPage.ID(), leaf.keyType, leaf.parent)
	right.leaves = append([]leafEntry(nil), leaf.leaves[mid:]...)
	right.next = leaf.next
	right.prev = leaf.id

	leaf.leaves = leaf.leaves[:mid]
	oldNext := leaf.next
	leaf.next = right.id

	right.encode(rightPage)
	rightPage.Unlatch()
	leaf.encode(curEntry.page)

	if oldNext != buffer.InvalidPageID {
		nextPage := t.pool.FetchPage(oldNext)
		nextPage.Latch()
		nextNode := decode(nextPage)
		nextNode.prev = right.id
		nextNode.encode(nextPage)
		nextPage.Unlatch()
		t.unpinID(oldNext, true)
	}

	t.unpinID(right.id, true)
	curEntry.page.Unlatch()
	t.unpinID(leaf.id, true)

	sepKey := right.leaves[0].key
	return t.insertIntoParent(ancestors, leaf.id, sepKey, right.id)
}

// insertIntoParent installs (sepKey, rightID) as leftID's new right
// sibling separator in leftID's parent, splitting the parent (and
// recursing) if it overflows. ancestors holds every write-latched page
// from the header down to (but excluding) leftID itself; the last entry
// is leftID's parent unless leftID was the root.
func (t *BTree) insertIntoParent(ancestors []pathEntry, leftID buffer.PageID, sepKey types.Field, rightID buffer.PageID) error {
	last := ancestors[len(ancestors)-1]

	if last.header {
		rootPage := t.pool.NewPage()
		rootPage.Latch()
		root := newInternalNode(rootPage.ID(), sepKey.Type(), buffer.InvalidPageID)
		root.children = []childEntry{{child: leftID}, {key: sepKey, child: rightID}}
		root.encode(rootPage)
		rootPage.Unlatch()
		t.unpinID(root.id, true)

		t.setParentOf(leftID, root.id)
		t.setParentOf(rightID, root.id)

		t.setRootIDLocked(last.page, root.id)
		t.releaseHeaderWrite(last.page, true)
		return nil
	}

	parentPage := last.page
	parent := decode(parentPage)
	idx := indexOfChild(parent, leftID)
	parent.children = append(parent.children, childEntry{})
	copy(parent.children[idx+2:], parent.children[idx+1:])
	parent.children[idx+1] = childEntry{key: sepKey, child: rightID}

	if parent.size() <= t.cfg.InternalMax {
		parent.encode(parentPage)
		t.releasePath(ancestors)
		return nil
	}

	return t.splitInternal(ancestors, parent)
}

// splitInternal splits an overflowing internal node by median, reparents
// the migrated children, and recurses into insertIntoParent.
func (t *BTree) splitInternal(ancestors []pathEntry, n *node) error {
	curPage := ancestors[len(ancestors)-1].page
	grandAncestors := ancestors[:len(ancestors)-1]

	mid := len(n.children) / 2
	promoted := n.children[mid].key

	rightPage := t.pool.NewPage()
	rightPage.Latch()
	right := newInternalNode(rightPage.ID(), n.keyType, n.parent)
	right.children = append([]childEntry(nil), n.children[mid:]...)
	right.children[0] = childEntry{child: right.children[0].child} // new sentinel

	n.children = n.children[:mid]

	right.encode(rightPage)
	rightPage.Unlatch()
	n.encode(curPage)
	curPage.Unlatch()
	t.unpinID(n.id, true)

	for _, c := range right.children {
		t.setParentOf(c.child, right.id)
	}
	t.unpinID(right.id, true)

	return t.insertIntoParent(grandAncestors, n.id, promoted, right.id)
}
