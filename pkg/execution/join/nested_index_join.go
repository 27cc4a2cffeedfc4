package join

import (
	"fmt"
	"storemy/pkg/concurrency/lock"
	"storemy/pkg/concurrency/transaction"
	"storemy/pkg/iterator"
	"storemy/pkg/memory"
	"storemy/pkg/storage/heap"
	"storemy/pkg/storage/index"
	"storemy/pkg/tuple"
)

// NestedIndexJoin joins an outer relation against an inner table through an
// index on the inner table's join column, instead of materializing the
// inner side into a block like NestedLoopJoin does. For each outer tuple it
// probes the index directly, so cost is O(|outer| * log(|inner|)) rather
// than O(|outer| * |inner|).
type NestedIndexJoin struct {
	tx          *transaction.TransactionContext
	store       *memory.PageStore
	outerChild  iterator.DbIterator
	outerField  int
	innerIdx    index.Index
	innerTable  *heap.HeapFile
	innerTable2 int // table ID, for row-lock OIDs
	stats       *JoinStatistics

	matchBuffer []*tuple.Tuple
	bufferIndex int
	initialized bool

	tableLocked bool
	heldRows    []lock.RID
}

// NewNestedIndexJoin builds a NestedIndexJoin. outerField is the column of
// outer tuples used to probe innerIdx, an index already built on the inner
// table's join column.
func NewNestedIndexJoin(tx *transaction.TransactionContext, store *memory.PageStore, outer iterator.DbIterator, outerField int, innerIdx index.Index, innerTable *heap.HeapFile, innerTableID int, stats *JoinStatistics) (*NestedIndexJoin, error) {
	if outer == nil {
		return nil, fmt.Errorf("outer child cannot be nil")
	}
	if innerIdx == nil {
		return nil, fmt.Errorf("inner index cannot be nil")
	}
	if innerTable == nil {
		return nil, fmt.Errorf("inner table cannot be nil")
	}

	return &NestedIndexJoin{
		tx:          tx,
		store:       store,
		outerChild:  outer,
		outerField:  outerField,
		innerIdx:    innerIdx,
		innerTable:  innerTable,
		innerTable2: innerTableID,
		stats:       stats,
		bufferIndex: -1,
	}, nil
}

func (nj *NestedIndexJoin) Initialize() error {
	if nj.initialized {
		return nil
	}
	if err := nj.store.LockManager().LockTable(nj.tx.ID, lock.IntentionShared, lock.OID(nj.innerTable2)); err != nil {
		return fmt.Errorf("failed to lock inner table %d: %v", nj.innerTable2, err)
	}
	nj.tableLocked = true
	nj.initialized = true
	return nil
}

func (nj *NestedIndexJoin) Next() (*tuple.Tuple, error) {
	if !nj.initialized {
		return nil, fmt.Errorf("nested index join not initialized")
	}

	if nj.hasBufferedResults() {
		return nj.getNextBufferedResult(), nil
	}

	for {
		hasNext, err := nj.outerChild.HasNext()
		if err != nil {
			return nil, err
		}
		if !hasNext {
			return nil, nil
		}

		outerTuple, err := nj.outerChild.Next()
		if err != nil {
			return nil, err
		}
		if outerTuple == nil {
			continue
		}

		if err := nj.probe(outerTuple); err != nil {
			return nil, err
		}

		if len(nj.matchBuffer) > 0 {
			nj.bufferIndex = 1
			return nj.matchBuffer[0], nil
		}
	}
}

// probe looks up the inner table's index using the outer tuple's join
// field, fetches every matching inner tuple, and joins it with outerTuple.
func (nj *NestedIndexJoin) probe(outerTuple *tuple.Tuple) error {
	nj.matchBuffer = nil
	nj.bufferIndex = 0

	key, err := outerTuple.GetField(nj.outerField)
	if err != nil {
		return fmt.Errorf("failed to get outer join field: %w", err)
	}
	if key == nil {
		return nil
	}

	rids, err := nj.innerIdx.Search(key)
	if err != nil {
		return fmt.Errorf("index probe failed: %w", err)
	}

	for _, rid := range rids {
		innerTuple, err := nj.fetchInnerTuple(rid)
		if err != nil {
			return err
		}
		if innerTuple == nil {
			continue
		}

		joined, err := tuple.CombineTuples(outerTuple, innerTuple)
		if err != nil {
			return err
		}
		nj.matchBuffer = append(nj.matchBuffer, joined)
	}

	return nil
}

func (nj *NestedIndexJoin) fetchInnerTuple(rid *tuple.TupleRecordID) (*tuple.Tuple, error) {
	row := lock.RID{
		PageID: uint64(rid.PageID.HashCode()), // #nosec G115
		Slot:   uint32(rid.TupleNum),           // #nosec G115
	}
	lm := nj.store.LockManager()
	oid := lock.OID(nj.innerTable2)
	if err := lm.LockRow(nj.tx.ID, lock.Shared, oid, row); err != nil {
		return nil, fmt.Errorf("failed to lock inner row: %v", err)
	}
	if nj.tx.Isolation == transaction.ReadCommitted {
		if err := lm.UnlockRow(nj.tx.ID, oid, row); err != nil {
			return nil, err
		}
	} else {
		nj.heldRows = append(nj.heldRows, row)
	}

	page, err := nj.store.GetPage(nj.tx.ID, rid.PageID, memory.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get inner page: %w", err)
	}

	hp, ok := page.(*heap.HeapPage)
	if !ok {
		return nil, fmt.Errorf("expected HeapPage, got %T", page)
	}

	return hp.GetTupleAt(rid.TupleNum)
}

func (nj *NestedIndexJoin) hasBufferedResults() bool {
	return nj.bufferIndex >= 0 && nj.bufferIndex < len(nj.matchBuffer)
}

func (nj *NestedIndexJoin) getNextBufferedResult() *tuple.Tuple {
	result := nj.matchBuffer[nj.bufferIndex]
	nj.bufferIndex++
	return result
}

func (nj *NestedIndexJoin) Reset() error {
	nj.matchBuffer = nil
	nj.bufferIndex = -1
	return nj.outerChild.Rewind()
}

func (nj *NestedIndexJoin) Close() error {
	nj.matchBuffer = nil
	nj.initialized = false

	lm := nj.store.LockManager()
	for _, rid := range nj.heldRows {
		if err := lm.UnlockRow(nj.tx.ID, lock.OID(nj.innerTable2), rid); err != nil {
			return fmt.Errorf("failed to unlock inner row: %v", err)
		}
	}
	nj.heldRows = nil

	if nj.tableLocked {
		if err := lm.UnlockTable(nj.tx.ID, lock.OID(nj.innerTable2)); err != nil {
			return fmt.Errorf("failed to unlock inner table %d: %v", nj.innerTable2, err)
		}
		nj.tableLocked = false
	}

	return nil
}

func (nj *NestedIndexJoin) EstimateCost() float64 {
	if nj.stats == nil {
		return DefaultHighCost
	}
	// Cost = |outer| * log2(|inner|), favored when an index exists.
	inner := float64(nj.stats.RightCardinality)
	if inner < 2 {
		inner = 2
	}
	return float64(nj.stats.LeftCardinality) * log2(inner)
}

func (nj *NestedIndexJoin) SupportsPredicateType(predicate *JoinPredicate) bool {
	return predicate != nil
}
