package btreeindex

import (
	"fmt"
	"storemy/pkg/buffer"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/heap"
	"storemy/pkg/storage/index"
	"storemy/pkg/storage/index/btree"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
)

// BTree adapts the standalone B+Tree index (§4.4, pkg/storage/index/btree)
// to the catalog's index.Index interface. The tree owns its own buffer
// pool and disk file; this type's only job is translating between the
// heap's tuple.TupleRecordID and the tree's opaque RID.
type BTree struct {
	indexID int
	keyType types.Type
	tree    *btree.BTree
}

// NewBTree wraps an already-open tree for use as a catalog index.
func NewBTree(indexID int, keyType types.Type, tree *btree.BTree) *BTree {
	return &BTree{indexID: indexID, keyType: keyType, tree: tree}
}

// OpenBTree creates (or reopens) the on-disk B+Tree backing an index at
// path, with its own private buffer pool per §4.4.
func OpenBTree(path primitives.Filepath, indexID int, keyType types.Type) (*BTree, error) {
	disk, err := buffer.NewFileDiskManager(path.String())
	if err != nil {
		return nil, fmt.Errorf("failed to open btree disk file: %w", err)
	}

	tree, err := btree.New(disk, buffer.DefaultConfig(), btree.DefaultConfig(), keyType)
	if err != nil {
		return nil, fmt.Errorf("failed to open btree: %w", err)
	}

	return NewBTree(indexID, keyType, tree), nil
}

// Insert adds a key-value pair to the B+Tree.
func (bt *BTree) Insert(key types.Field, rid *tuple.TupleRecordID) error {
	if key.Type() != bt.keyType {
		return fmt.Errorf("key type mismatch: expected %v, got %v", bt.keyType, key.Type())
	}
	_, err := bt.tree.Insert(key, ridFromRecord(rid))
	return err
}

// Delete removes a key-value pair from the B+Tree. The index is
// duplicate-free on key (§4.4), so the rid only identifies which entry
// the catalog believes is current; removal is keyed on key alone.
func (bt *BTree) Delete(key types.Field, rid *tuple.TupleRecordID) error {
	if key.Type() != bt.keyType {
		return fmt.Errorf("key type mismatch: expected %v, got %v", bt.keyType, key.Type())
	}
	return bt.tree.Remove(key)
}

// Search finds the tuple location for a given key.
func (bt *BTree) Search(key types.Field) ([]*tuple.TupleRecordID, error) {
	if key.Type() != bt.keyType {
		return nil, fmt.Errorf("key type mismatch: expected %v, got %v", bt.keyType, key.Type())
	}

	rid, found, err := bt.tree.GetValue(key)
	if err != nil {
		return nil, fmt.Errorf("failed to search btree: %w", err)
	}
	if !found {
		return []*tuple.TupleRecordID{}, nil
	}
	return []*tuple.TupleRecordID{recordFromRID(rid)}, nil
}

// RangeSearch finds all tuples where key is in [startKey, endKey], walking
// the leaf chain from the B+Tree iterator (§4.4's range iteration).
func (bt *BTree) RangeSearch(startKey, endKey types.Field) ([]*tuple.TupleRecordID, error) {
	if startKey.Type() != bt.keyType || endKey.Type() != bt.keyType {
		return nil, fmt.Errorf("key type mismatch")
	}

	it, err := bt.tree.BeginAt(startKey)
	if err != nil {
		return nil, fmt.Errorf("failed to seek start key: %w", err)
	}
	defer it.Close()

	var results []*tuple.TupleRecordID
	for !it.IsEnd() {
		withinEnd, err := it.Key().Compare(types.LessThanOrEqual, endKey)
		if err != nil {
			return nil, err
		}
		if !withinEnd {
			break
		}
		results = append(results, recordFromRID(it.RID()))
		it.Next()
	}
	return results, nil
}

// GetIndexType returns BTreeIndex.
func (bt *BTree) GetIndexType() index.IndexType {
	return index.BTreeIndex
}

// GetKeyType returns the type of keys this index handles.
func (bt *BTree) GetKeyType() types.Type {
	return bt.keyType
}

// Close releases resources held by the index.
func (bt *BTree) Close() error {
	return bt.tree.Close()
}

// ridFromRecord packs a heap tuple.TupleRecordID (table id + page number +
// slot) into the tree's opaque RID. The tree never interprets this value
// beyond storing and returning it (pkg/storage/index/btree/rid.go), so the
// packing only needs to be lossless, not meaningful to the tree.
func ridFromRecord(rid *tuple.TupleRecordID) btree.RID {
	tableID := int64(rid.PageID.GetTableID())
	pageNum := int64(rid.PageID.PageNo())
	packed := (tableID << 32) | (pageNum & 0xffffffff)
	return btree.RID{PageID: buffer.PageID(packed), Slot: uint32(rid.TupleNum)}
}

// recordFromRID reverses ridFromRecord.
func recordFromRID(r btree.RID) *tuple.TupleRecordID {
	packed := int64(r.PageID)
	tableID := int(packed >> 32)
	pageNum := int(int32(packed))
	pid := heap.NewHeapPageID(tableID, pageNum)
	return tuple.NewTupleRecordID(pid, int(r.Slot))
}
