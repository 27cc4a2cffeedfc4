package query

import (
	"fmt"
	"storemy/pkg/concurrency/lock"
	"storemy/pkg/concurrency/transaction"
	"storemy/pkg/indexmanager"
	"storemy/pkg/iterator"
	"storemy/pkg/memory"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/page"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
)

// Insert is a pull-based executor that consumes every tuple produced by its
// child and writes each one into tableID. Like BusTub's InsertExecutor it
// does not stream a row per insert: the first Next() call drains the child
// completely and returns a single one-column tuple holding the count of
// rows inserted; every subsequent call reports end of data.
type Insert struct {
	base       *BaseIterator
	tx         *transaction.TransactionContext
	store      *memory.PageStore
	child      iterator.DbIterator
	tableID    int
	dbFile     page.DbFile
	idxMgr     *indexmanager.IndexManager // nil if the table has no indexes to maintain
	resultDesc *tuple.TupleDescription

	tableLocked bool
	heldRows    []lock.RID
	done        bool
}

// NewInsert creates an Insert executor that writes rows produced by child
// into tableID using dbFile. idxMgr may be nil when the table has no
// indexes; otherwise every inserted row is also added to its indexes.
func NewInsert(tx *transaction.TransactionContext, store *memory.PageStore, child iterator.DbIterator, tableID int, dbFile page.DbFile, idxMgr *indexmanager.IndexManager) (*Insert, error) {
	if child == nil {
		return nil, fmt.Errorf("child operator cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("page store cannot be nil")
	}
	if dbFile == nil {
		return nil, fmt.Errorf("db file cannot be nil")
	}

	desc, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"rows_inserted"})
	if err != nil {
		return nil, fmt.Errorf("failed to build result schema: %w", err)
	}

	in := &Insert{
		tx:         tx,
		store:      store,
		child:      child,
		tableID:    tableID,
		dbFile:     dbFile,
		idxMgr:     idxMgr,
		resultDesc: desc,
	}

	in.base = NewBaseIterator(in.readNext)
	return in, nil
}

// Open opens the child and acquires an IX lock on the target table: Insert
// writes rows but reads none of the table's existing data, so Intention
// Exclusive (rather than plain Exclusive) lets concurrent readers proceed.
func (in *Insert) Open() error {
	if err := in.child.Open(); err != nil {
		return fmt.Errorf("failed to open child operator: %w", err)
	}

	if err := in.store.LockManager().LockTable(in.tx.ID, lock.IntentionExclusive, lock.OID(in.tableID)); err != nil {
		return fmt.Errorf("failed to lock table %d: %v", in.tableID, err)
	}
	in.tableLocked = true

	in.done = false
	in.base.MarkOpened()
	return nil
}

// Close releases the child, row locks, and the table lock. Row X locks are
// always held to end-of-transaction regardless of isolation level: writers
// follow strict 2PL so other transactions cannot see or overwrite an
// uncommitted insert.
func (in *Insert) Close() error {
	if err := in.child.Close(); err != nil {
		return fmt.Errorf("failed to close child operator: %w", err)
	}

	lm := in.store.LockManager()
	for _, rid := range in.heldRows {
		if err := lm.UnlockRow(in.tx.ID, lock.OID(in.tableID), rid); err != nil {
			return fmt.Errorf("failed to unlock row: %v", err)
		}
	}
	in.heldRows = nil

	if in.tableLocked {
		if err := lm.UnlockTable(in.tx.ID, lock.OID(in.tableID)); err != nil {
			return fmt.Errorf("failed to unlock table %d: %v", in.tableID, err)
		}
		in.tableLocked = false
	}

	return in.base.Close()
}

// lockInsertedRow acquires an exclusive lock on the row a tuple was just
// written to and holds it until Close.
func (in *Insert) lockInsertedRow(t *tuple.Tuple) error {
	if t == nil || t.RecordID == nil {
		return nil
	}

	rid := lock.RID{
		PageID: uint64(t.RecordID.PageID.HashCode()), // #nosec G115
		Slot:   uint32(t.RecordID.TupleNum),           // #nosec G115
	}

	oid := lock.OID(in.tableID)
	if err := in.store.LockManager().LockRow(in.tx.ID, lock.Exclusive, oid, rid); err != nil {
		return fmt.Errorf("failed to lock inserted row: %v", err)
	}
	in.heldRows = append(in.heldRows, rid)
	return nil
}

// readNext drains the child on the first call, inserting every row it
// produces, and returns a single summary tuple. Subsequent calls signal
// end of data by returning nil.
func (in *Insert) readNext() (*tuple.Tuple, error) {
	if in.done {
		return nil, nil
	}
	in.done = true

	count := 0
	for {
		hasNext, err := in.child.HasNext()
		if err != nil {
			return nil, fmt.Errorf("error checking if child has next: %w", err)
		}
		if !hasNext {
			break
		}

		t, err := in.child.Next()
		if err != nil {
			return nil, fmt.Errorf("error fetching tuple from child: %w", err)
		}
		if t == nil {
			break
		}

		if err := in.store.InsertTuple(in.tx, in.dbFile, t); err != nil {
			return nil, fmt.Errorf("failed to insert tuple: %w", err)
		}

		if err := in.lockInsertedRow(t); err != nil {
			return nil, err
		}

		if in.idxMgr != nil {
			if err := in.idxMgr.OnInsert(in.tx, primitives.TableID(in.tableID), t); err != nil { // #nosec G115
				return nil, fmt.Errorf("failed to update indexes: %w", err)
			}
		}

		count++
	}

	result := tuple.NewTuple(in.resultDesc)
	if err := result.SetField(0, types.NewIntField(int64(count))); err != nil {
		return nil, fmt.Errorf("failed to set result count: %w", err)
	}
	return result, nil
}

// HasNext checks if the summary tuple is still pending.
func (in *Insert) HasNext() (bool, error) {
	return in.base.HasNext()
}

// Next returns the summary tuple (rows_inserted) on first call, nil after.
func (in *Insert) Next() (*tuple.Tuple, error) {
	return in.base.Next()
}

// Rewind is unsupported: re-running Insert would insert the rows again.
func (in *Insert) Rewind() error {
	return fmt.Errorf("insert operator does not support rewind")
}

// GetTupleDesc returns the schema of the summary tuple this executor
// produces, not the schema of the rows it writes.
func (in *Insert) GetTupleDesc() *tuple.TupleDescription {
	return in.resultDesc
}
