package lock

import (
	"storemy/pkg/concurrency/transaction"
	"storemy/pkg/tuple"
)

// The cache layer above the buffer pool (pkg/memory) predates the
// multi-granularity model and only ever needs plain per-page
// shared/exclusive locking with no intention locks. LockPage treats
// each page as its own "table" in degenerate single-granularity use —
// a legitimate special case of the protocol above, not a second lock
// manager.

func pageOID(pid tuple.PageID) OID { return OID(uint64(pid.HashCode())) } // #nosec G115

// LockPage acquires a plain shared (exclusive=false) or exclusive
// (exclusive=true) lock on pid.
func (m *Manager) LockPage(txn *transaction.TransactionID, pid tuple.PageID, exclusive bool) error {
	mode := Shared
	if exclusive {
		mode = Exclusive
	}
	return m.LockTable(txn, mode, pageOID(pid))
}

// UnlockPage releases txn's lock on pid.
func (m *Manager) UnlockPage(txn *transaction.TransactionID, pid tuple.PageID) {
	m.UnlockTable(txn, pageOID(pid))
}

// UnlockAllPages releases every lock txn holds, across all granularities.
func (m *Manager) UnlockAllPages(txn *transaction.TransactionID) {
	m.UnlockAll(txn)
}

// IsPageLocked reports whether any transaction currently holds a granted
// lock on pid.
func (m *Manager) IsPageLocked(pid tuple.PageID) bool {
	m.mu.Lock()
	q, ok := m.tableQueue[pageOID(pid)]
	m.mu.Unlock()
	if !ok {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, r := range q.requests {
		if r.granted {
			return true
		}
	}
	return false
}
