package btree

import "storemy/pkg/buffer"

// deletePage frees id via the buffer pool: it must already be unpinned by
// the time this runs, so callers unpin right before calling it.
func (t *BTree) deletePage(id buffer.PageID) {
	t.pool.DeletePage(id)
}

// coalesceOrRedistribute restores n's minimum-occupancy invariant after a
// deletion, per §4.4. path's last entry is n's own write-latched page;
// the remaining entries are its write-latched ancestors (header-first).
func (t *BTree) coalesceOrRedistribute(path []pathEntry, n *node) error {
	cur := path[len(path)-1]
	ancestors := path[:len(path)-1]

	if len(ancestors) == 1 && ancestors[0].header {
		header := ancestors[0].page
		if !n.isLeaf() && len(n.children) == 1 {
			newRoot := n.children[0].child
			t.setRootIDLocked(header, newRoot)
			t.setParentOf(newRoot, buffer.InvalidPageID)
			cur.page.Unlatch()
			t.unpinID(n.id, false)
			t.deletePage(n.id)
			t.releaseHeaderWrite(header, true)
			return nil
		}
		if n.isLeaf() && len(n.leaves) == 0 {
			t.setRootIDLocked(header, buffer.InvalidPageID)
			cur.page.Unlatch()
			t.unpinID(n.id, false)
			t.deletePage(n.id)
			t.releaseHeaderWrite(header, true)
			return nil
		}
		n.encode(cur.page)
		t.releasePath(path)
		return nil
	}

	min := t.cfg.leafMin()
	if !n.isLeaf() {
		min = t.cfg.internalMin()
	}
	if n.size() >= min {
		n.encode(cur.page)
		t.releasePath(path)
		return nil
	}

	parentEntry := ancestors[len(ancestors)-1]
	parent := decode(parentEntry.page)
	idx := indexOfChild(parent, n.id)

	var siblingIdx int
	isLeftSibling := idx > 0
	if isLeftSibling {
		siblingIdx = idx - 1
	} else {
		siblingIdx = idx + 1
	}
	siblingID := parent.children[siblingIdx].child
	siblingPage := t.pool.FetchPage(siblingID)
	siblingPage.Latch()
	sibling := decode(siblingPage)

	if sibling.size() > min {
		t.redistribute(n, sibling, parent, idx, isLeftSibling)
		n.encode(cur.page)
		sibling.encode(siblingPage)
		parent.encode(parentEntry.page)
		siblingPage.Unlatch()
		t.unpinID(sibling.id, true)
		cur.page.Unlatch()
		t.unpinID(n.id, true)
		t.releasePath(ancestors)
		return nil
	}

	t.coalesce(n, sibling, parent, idx, isLeftSibling)
	if isLeftSibling {
		sibling.encode(siblingPage)
	} else {
		n.encode(cur.page)
	}
	siblingPage.Unlatch()
	cur.page.Unlatch()
	if isLeftSibling {
		t.unpinID(n.id, false)
		t.deletePage(n.id)
		t.unpinID(sibling.id, true)
	} else {
		t.unpinID(sibling.id, false)
		t.deletePage(sibling.id)
		t.unpinID(n.id, true)
	}

	return t.coalesceOrRedistribute(ancestors, parent)
}

// redistribute moves one entry across the n/sibling boundary and fixes
// the separator key in parent.
func (t *BTree) redistribute(n, sibling, parent *node, idx int, fromLeft bool) {
	if n.isLeaf() {
		if fromLeft {
			last := sibling.leaves[len(sibling.leaves)-1]
			sibling.leaves = sibling.leaves[:len(sibling.leaves)-1]
			n.leaves = append([]leafEntry{last}, n.leaves...)
			parent.children[idx].key = n.leaves[0].key
		} else {
			first := sibling.leaves[0]
			sibling.leaves = sibling.leaves[1:]
			n.leaves = append(n.leaves, first)
			parent.children[idx+1].key = sibling.leaves[0].key
		}
		return
	}

	if fromLeft {
		borrowed := sibling.children[len(sibling.children)-1]
		sibling.children = sibling.children[:len(sibling.children)-1]
		oldSep := parent.children[idx].key
		n.children = append([]childEntry{{child: borrowed.child}}, n.children...)
		n.children[1].key = oldSep
		parent.children[idx].key = borrowed.key
		t.setParentOf(borrowed.child, n.id)
	} else {
		borrowed := sibling.children[0]
		sibling.children = sibling.children[1:]
		oldSep := parent.children[idx+1].key
		n.children = append(n.children, childEntry{key: oldSep, child: borrowed.child})
		sibling.children[0] = childEntry{child: sibling.children[0].child}
		parent.children[idx+1].key = sibling.children[0].key
		t.setParentOf(borrowed.child, n.id)
	}
}

// coalesce merges the right of (n, sibling) into the left, per §4.4.
// Deletes the separator entry in parent but does not encode/release
// parent or recurse — the caller does that.
func (t *BTree) coalesce(n, sibling, parent *node, idx int, siblingIsLeft bool) {
	var left, right *node
	var sepIdx int
	if siblingIsLeft {
		left, right = sibling, n
		sepIdx = idx
	} else {
		left, right = n, sibling
		sepIdx = idx + 1
	}

	if left.isLeaf() {
		left.leaves = append(left.leaves, right.leaves...)
		left.next = right.next
		if right.next != buffer.InvalidPageID {
			nextPage := t.pool.FetchPage(right.next)
			nextPage.Latch()
			nextNode := decode(nextPage)
			nextNode.prev = left.id
			nextNode.encode(nextPage)
			nextPage.Unlatch()
			t.unpinID(right.next, true)
		}
	} else {
		right.children[0] = childEntry{key: parent.children[sepIdx].key, child: right.children[0].child}
		left.children = append(left.children, right.children...)
		for _, c := range right.children {
			t.setParentOf(c.child, left.id)
		}
	}

	parent.children = append(parent.children[:sepIdx], parent.children[sepIdx+1:]...)
}
