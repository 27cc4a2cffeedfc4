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

// Delete is a pull-based executor that consumes every tuple produced by its
// child (typically a scan already carrying RecordIDs) and removes each one
// from tableID. Like Insert, it does not stream a row per delete: the first
// Next() call drains the child completely and returns a single one-column
// tuple holding the count of rows deleted.
type Delete struct {
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

// NewDelete creates a Delete executor that removes rows produced by child
// from tableID using dbFile. idxMgr may be nil when the table has no
// indexes; otherwise every deleted row is also removed from its indexes.
func NewDelete(tx *transaction.TransactionContext, store *memory.PageStore, child iterator.DbIterator, tableID int, dbFile page.DbFile, idxMgr *indexmanager.IndexManager) (*Delete, error) {
	if child == nil {
		return nil, fmt.Errorf("child operator cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("page store cannot be nil")
	}
	if dbFile == nil {
		return nil, fmt.Errorf("db file cannot be nil")
	}

	desc, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"rows_deleted"})
	if err != nil {
		return nil, fmt.Errorf("failed to build result schema: %w", err)
	}

	d := &Delete{
		tx:         tx,
		store:      store,
		child:      child,
		tableID:    tableID,
		dbFile:     dbFile,
		idxMgr:     idxMgr,
		resultDesc: desc,
	}

	d.base = NewBaseIterator(d.readNext)
	return d, nil
}

// Open opens the child and acquires an IX lock on the target table. Unlike
// Insert, Delete's child typically reads the table first to find victims,
// so the child's own scan operator is responsible for its own S/IS locking;
// this IX lock only covers the deletes Delete itself performs.
func (d *Delete) Open() error {
	if err := d.child.Open(); err != nil {
		return fmt.Errorf("failed to open child operator: %w", err)
	}

	if err := d.store.LockManager().LockTable(d.tx.ID, lock.IntentionExclusive, lock.OID(d.tableID)); err != nil {
		return fmt.Errorf("failed to lock table %d: %v", d.tableID, err)
	}
	d.tableLocked = true

	d.done = false
	d.base.MarkOpened()
	return nil
}

// Close releases the child, row locks, and the table lock. Row X locks are
// held to end-of-transaction regardless of isolation level, per strict 2PL.
func (d *Delete) Close() error {
	if err := d.child.Close(); err != nil {
		return fmt.Errorf("failed to close child operator: %w", err)
	}

	lm := d.store.LockManager()
	for _, rid := range d.heldRows {
		if err := lm.UnlockRow(d.tx.ID, lock.OID(d.tableID), rid); err != nil {
			return fmt.Errorf("failed to unlock row: %v", err)
		}
	}
	d.heldRows = nil

	if d.tableLocked {
		if err := lm.UnlockTable(d.tx.ID, lock.OID(d.tableID)); err != nil {
			return fmt.Errorf("failed to unlock table %d: %v", d.tableID, err)
		}
		d.tableLocked = false
	}

	return d.base.Close()
}

// lockVictimRow upgrades to an exclusive lock on the row about to be
// deleted and holds it until Close.
func (d *Delete) lockVictimRow(t *tuple.Tuple) error {
	if t == nil || t.RecordID == nil {
		return nil
	}

	rid := lock.RID{
		PageID: uint64(t.RecordID.PageID.HashCode()), // #nosec G115
		Slot:   uint32(t.RecordID.TupleNum),           // #nosec G115
	}

	oid := lock.OID(d.tableID)
	if err := d.store.LockManager().LockRow(d.tx.ID, lock.Exclusive, oid, rid); err != nil {
		return fmt.Errorf("failed to lock victim row: %v", err)
	}
	d.heldRows = append(d.heldRows, rid)
	return nil
}

// readNext drains the child on the first call, deleting every row it
// produces, and returns a single summary tuple. Subsequent calls signal
// end of data by returning nil.
func (d *Delete) readNext() (*tuple.Tuple, error) {
	if d.done {
		return nil, nil
	}
	d.done = true

	count := 0
	for {
		hasNext, err := d.child.HasNext()
		if err != nil {
			return nil, fmt.Errorf("error checking if child has next: %w", err)
		}
		if !hasNext {
			break
		}

		t, err := d.child.Next()
		if err != nil {
			return nil, fmt.Errorf("error fetching tuple from child: %w", err)
		}
		if t == nil {
			break
		}

		if err := d.lockVictimRow(t); err != nil {
			return nil, err
		}

		if d.idxMgr != nil {
			if err := d.idxMgr.OnDelete(d.tx, primitives.TableID(d.tableID), t); err != nil { // #nosec G115
				return nil, fmt.Errorf("failed to update indexes: %w", err)
			}
		}

		if err := d.store.DeleteTuple(d.tx, d.dbFile, t); err != nil {
			return nil, fmt.Errorf("failed to delete tuple: %w", err)
		}

		count++
	}

	result := tuple.NewTuple(d.resultDesc)
	if err := result.SetField(0, types.NewIntField(int64(count))); err != nil {
		return nil, fmt.Errorf("failed to set result count: %w", err)
	}
	return result, nil
}

// HasNext checks if the summary tuple is still pending.
func (d *Delete) HasNext() (bool, error) {
	return d.base.HasNext()
}

// Next returns the summary tuple (rows_deleted) on first call, nil after.
func (d *Delete) Next() (*tuple.Tuple, error) {
	return d.base.Next()
}

// Rewind is unsupported: re-running Delete would attempt to delete
// already-deleted rows.
func (d *Delete) Rewind() error {
	return fmt.Errorf("delete operator does not support rewind")
}

// GetTupleDesc returns the schema of the summary tuple this executor
// produces, not the schema of the rows it removes.
func (d *Delete) GetTupleDesc() *tuple.TupleDescription {
	return d.resultDesc
}
