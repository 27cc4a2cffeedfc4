package btreeindex

import (
	"fmt"
	"os"
	"path/filepath"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/heap"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
	"testing"
)

func setupTestBTree(t *testing.T, keyType types.Type) *BTree {
	t.Helper()

	tmpDir := t.TempDir()
	filename := filepath.Join(tmpDir, fmt.Sprintf("btree_test_%d.dat", os.Getpid()))

	bt, err := OpenBTree(primitives.Filepath(filename), 1, keyType)
	if err != nil {
		t.Fatalf("OpenBTree: %v", err)
	}
	t.Cleanup(func() { bt.Close() })
	return bt
}

func rid(tableID, pageNum, slot int) *tuple.TupleRecordID {
	return tuple.NewTupleRecordID(heap.NewHeapPageID(tableID, pageNum), slot)
}

func TestBTree_InsertAndSearch(t *testing.T) {
	bt := setupTestBTree(t, types.IntType)

	for i := int64(0); i < 50; i++ {
		if err := bt.Insert(types.NewIntField(i), rid(1, 0, int(i))); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	for i := int64(0); i < 50; i++ {
		results, err := bt.Search(types.NewIntField(i))
		if err != nil {
			t.Fatalf("Search(%d): %v", i, err)
		}
		if len(results) != 1 || results[0].TupleNum != int(i) {
			t.Fatalf("Search(%d) = %v, want one entry with tuple num %d", i, results, i)
		}
	}
}

func TestBTree_DuplicateKeyRejected(t *testing.T) {
	bt := setupTestBTree(t, types.IntType)

	if err := bt.Insert(types.NewIntField(7), rid(1, 0, 0)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := bt.Insert(types.NewIntField(7), rid(1, 0, 1)); err != nil {
		t.Fatalf("duplicate insert should not error, got: %v", err)
	}

	results, err := bt.Search(types.NewIntField(7))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].TupleNum != 0 {
		t.Fatalf("duplicate insert should be a no-op, got %v", results)
	}
}

func TestBTree_Delete(t *testing.T) {
	bt := setupTestBTree(t, types.IntType)

	for i := int64(0); i < 20; i++ {
		if err := bt.Insert(types.NewIntField(i), rid(1, 0, int(i))); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	if err := bt.Delete(types.NewIntField(10), rid(1, 0, 10)); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	results, err := bt.Search(types.NewIntField(10))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("deleted key should not be found, got %v", results)
	}

	results, err = bt.Search(types.NewIntField(9))
	if err != nil || len(results) != 1 {
		t.Fatalf("unrelated key should survive a delete, got %v, err %v", results, err)
	}
}

func TestBTree_RangeSearch(t *testing.T) {
	bt := setupTestBTree(t, types.IntType)

	for i := int64(0); i < 100; i++ {
		if err := bt.Insert(types.NewIntField(i), rid(1, 0, int(i))); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	results, err := bt.RangeSearch(types.NewIntField(10), types.NewIntField(19))
	if err != nil {
		t.Fatalf("RangeSearch: %v", err)
	}
	if len(results) != 10 {
		t.Fatalf("RangeSearch(10,19) returned %d entries, want 10", len(results))
	}
	for i, r := range results {
		if r.TupleNum != 10+i {
			t.Fatalf("RangeSearch results out of order: %v", results)
		}
	}
}

func TestBTree_RIDRoundTrip(t *testing.T) {
	original := rid(42, 12345, 7)
	packed := ridFromRecord(original)
	back := recordFromRID(packed)

	if back.PageID.GetTableID() != original.PageID.GetTableID() {
		t.Fatalf("table id not preserved: got %d, want %d", back.PageID.GetTableID(), original.PageID.GetTableID())
	}
	if back.PageID.PageNo() != original.PageID.PageNo() {
		t.Fatalf("page number not preserved: got %d, want %d", back.PageID.PageNo(), original.PageID.PageNo())
	}
	if back.TupleNum != original.TupleNum {
		t.Fatalf("tuple num not preserved: got %d, want %d", back.TupleNum, original.TupleNum)
	}
}
