package lock

import (
	"fmt"
	"storemy/pkg/concurrency/transaction"
	"sync"
	"time"
)

// OID identifies a lockable table (or index) in the catalog.
type OID uint64

// RID identifies a row: the page holding it and its slot within that page.
type RID struct {
	PageID uint64
	Slot   uint32
}

type txnState struct {
	shrinking  bool
	tableLocks map[OID]Mode
	rowLocks   map[OID]map[RID]Mode
}

func newTxnState() *txnState {
	return &txnState{
		tableLocks: make(map[OID]Mode),
		rowLocks:   make(map[OID]map[RID]Mode),
	}
}

// Manager is the lock manager: the sole arbiter of table and row locks
// for every transaction, and owner of the background deadlock detector.
type Manager struct {
	mu         sync.Mutex
	tableQueue map[OID]*requestQueue
	rowQueue   map[OID]map[RID]*requestQueue
	txns       map[int64]*txnState
	graph      *waitsForGraph

	stopCh chan struct{}
}

// NewManager creates a lock manager and starts its background cycle
// detector, which runs every detectionInterval.
func NewManager(detectionInterval time.Duration) *Manager {
	m := &Manager{
		tableQueue: make(map[OID]*requestQueue),
		rowQueue:   make(map[OID]map[RID]*requestQueue),
		txns:       make(map[int64]*txnState),
		graph:      newWaitsForGraph(),
		stopCh:     make(chan struct{}),
	}
	if detectionInterval > 0 {
		go m.runCycleDetection(detectionInterval)
	}
	return m
}

// Close stops the background deadlock detector.
func (m *Manager) Close() { close(m.stopCh) }

func (m *Manager) state(txn *transaction.TransactionID) *txnState {
	s, ok := m.txns[txn.ID()]
	if !ok {
		s = newTxnState()
		m.txns[txn.ID()] = s
	}
	return s
}

func (m *Manager) tableQ(oid OID) *requestQueue {
	q, ok := m.tableQueue[oid]
	if !ok {
		q = newRequestQueue()
		m.tableQueue[oid] = q
	}
	return q
}

func (m *Manager) rowQ(oid OID, rid RID) *requestQueue {
	byRID, ok := m.rowQueue[oid]
	if !ok {
		byRID = make(map[RID]*requestQueue)
		m.rowQueue[oid] = byRID
	}
	q, ok := byRID[rid]
	if !ok {
		q = newRequestQueue()
		byRID[rid] = q
	}
	return q
}

// LockTable acquires a table-level lock for txn in the given mode,
// blocking until granted or the request is chosen as a deadlock victim.
func (m *Manager) LockTable(txn *transaction.TransactionID, mode Mode, oid OID) error {
	m.mu.Lock()
	st := m.state(txn)
	if st.shrinking && !isIntention(mode) {
		m.mu.Unlock()
		return fmt.Errorf("transaction %d: cannot acquire %s in shrinking phase", txn.ID(), mode)
	}

	if held, ok := st.tableLocks[oid]; ok {
		if held == mode {
			m.mu.Unlock()
			return nil
		}
		if !upgradeAllowed(held, mode) {
			m.mu.Unlock()
			return fmt.Errorf("transaction %d: illegal lock upgrade %s->%s on table %d", txn.ID(), held, mode, oid)
		}
		return m.upgradeTable(txn, st, oid, mode)
	}

	q := m.tableQ(oid)
	m.mu.Unlock()

	return m.acquire(txn, q, mode, func() {
		m.mu.Lock()
		st.tableLocks[oid] = mode
		m.mu.Unlock()
	})
}

// upgradeTable splices txn's request into oid's table queue just ahead of
// the first still-waiting request, per the FIFO-preserving upgrade
// discipline: only one upgrade may be in flight per resource at a time.
func (m *Manager) upgradeTable(txn *transaction.TransactionID, st *txnState, oid OID, mode Mode) error {
	q := m.tableQ(oid)
	q.mu.Lock()
	if q.upgrading != nil && !q.upgrading.Equals(txn) {
		q.mu.Unlock()
		m.mu.Unlock()
		return fmt.Errorf("transaction %d: another upgrade already in progress on table %d", txn.ID(), oid)
	}
	q.upgrading = txn
	q.remove(txn)
	target := &request{txn: txn, mode: mode}
	insertAt := len(q.requests)
	for i, r := range q.requests {
		if !r.granted {
			insertAt = i
			break
		}
	}
	q.requests = append(q.requests, nil)
	copy(q.requests[insertAt+1:], q.requests[insertAt:])
	q.requests[insertAt] = target
	q.mu.Unlock()
	m.mu.Unlock()

	if err := m.waitUntilGranted(txn, q, target); err != nil {
		return err
	}

	q.mu.Lock()
	q.upgrading = nil
	q.mu.Unlock()

	m.mu.Lock()
	st.tableLocks[oid] = mode
	m.mu.Unlock()
	return nil
}

// LockRow acquires a row lock, requiring txn to already hold a
// sufficient table-level intention lock: any mode for Shared, IX/SIX/X
// for Exclusive (BusTub's asymmetry — Shared rows merely need IS,
// Exclusive rows specifically need an X-compatible intention lock).
func (m *Manager) LockRow(txn *transaction.TransactionID, mode Mode, oid OID, rid RID) error {
	m.mu.Lock()
	st := m.state(txn)
	tableMode, hasTable := st.tableLocks[oid]
	if !hasTable {
		m.mu.Unlock()
		return fmt.Errorf("transaction %d: row lock on %d/%v requires a table intention lock first", txn.ID(), oid, rid)
	}
	if mode == Exclusive && !(tableMode == IntentionExclusive || tableMode == SharedIntentionExclusive || tableMode == Exclusive) {
		m.mu.Unlock()
		return fmt.Errorf("transaction %d: exclusive row lock on %d/%v requires IX/SIX/X on the table, have %s", txn.ID(), oid, rid, tableMode)
	}
	if st.shrinking {
		m.mu.Unlock()
		return fmt.Errorf("transaction %d: cannot acquire row lock in shrinking phase", txn.ID())
	}

	rowLocks := st.rowLocks[oid]
	if rowLocks == nil {
		rowLocks = make(map[RID]Mode)
		st.rowLocks[oid] = rowLocks
	}
	if held, ok := rowLocks[rid]; ok {
		if held == mode {
			m.mu.Unlock()
			return nil
		}
		if held != Shared || mode != Exclusive {
			m.mu.Unlock()
			return fmt.Errorf("transaction %d: illegal row lock upgrade %s->%s", txn.ID(), held, mode)
		}
	}

	q := m.rowQ(oid, rid)
	m.mu.Unlock()

	return m.acquire(txn, q, mode, func() {
		m.mu.Lock()
		st.rowLocks[oid][rid] = mode
		m.mu.Unlock()
	})
}

// acquire enqueues target behind any existing request for txn (removing
// it first), tries an immediate grant, records wait-for edges and checks
// for a cycle if it couldn't grant, then blocks until granted or aborted.
func (m *Manager) acquire(txn *transaction.TransactionID, q *requestQueue, mode Mode, onGranted func()) error {
	q.mu.Lock()
	q.remove(txn)
	target := &request{txn: txn, mode: mode}
	q.requests = append(q.requests, target)
	q.mu.Unlock()

	if err := m.waitUntilGranted(txn, q, target); err != nil {
		return err
	}
	onGranted()
	return nil
}

func (m *Manager) waitUntilGranted(txn *transaction.TransactionID, q *requestQueue, target *request) error {
	q.mu.Lock()
	q.tryGrantAll()
	for !target.granted {
		for _, h := range q.holders(txn) {
			m.graph.addEdge(txn, h)
		}
		if victim, found := m.graph.findCycle(); found && victim == txn.ID() {
			q.remove(txn)
			q.mu.Unlock()
			m.graph.removeTxn(txn)
			return fmt.Errorf("transaction %d aborted: deadlock detected", txn.ID())
		}
		q.cond.Wait()
		q.tryGrantAll()
	}
	q.mu.Unlock()
	m.graph.removeTxn(txn)
	return nil
}

// UnlockTable releases txn's table lock on oid. All of txn's row locks
// on oid must already be released (strict multi-granularity discipline).
func (m *Manager) UnlockTable(txn *transaction.TransactionID, oid OID) error {
	m.mu.Lock()
	st := m.state(txn)
	if rows := st.rowLocks[oid]; len(rows) > 0 {
		m.mu.Unlock()
		return fmt.Errorf("transaction %d: cannot unlock table %d with row locks still held", txn.ID(), oid)
	}
	if _, ok := st.tableLocks[oid]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("transaction %d: no lock held on table %d", txn.ID(), oid)
	}
	delete(st.tableLocks, oid)
	st.shrinking = true
	q := m.tableQ(oid)
	m.mu.Unlock()

	q.mu.Lock()
	q.remove(txn)
	q.tryGrantAll()
	q.mu.Unlock()
	return nil
}

// UnlockRow releases txn's row lock on (oid, rid).
func (m *Manager) UnlockRow(txn *transaction.TransactionID, oid OID, rid RID) error {
	m.mu.Lock()
	st := m.state(txn)
	rows, ok := st.rowLocks[oid]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("transaction %d: no row locks held on table %d", txn.ID(), oid)
	}
	if _, ok := rows[rid]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("transaction %d: no lock held on row %d/%v", txn.ID(), oid, rid)
	}
	delete(rows, rid)
	st.shrinking = true
	q := m.rowQ(oid, rid)
	m.mu.Unlock()

	q.mu.Lock()
	q.remove(txn)
	q.tryGrantAll()
	q.mu.Unlock()
	return nil
}

// UnlockAll releases every lock txn holds (table and row), for commit or
// abort cleanup.
func (m *Manager) UnlockAll(txn *transaction.TransactionID) {
	m.mu.Lock()
	st, ok := m.txns[txn.ID()]
	if !ok {
		m.mu.Unlock()
		return
	}
	rowTables := make([]OID, 0, len(st.rowLocks))
	for oid, rows := range st.rowLocks {
		for rid := range rows {
			m.unlockRowLocked(txn, oid, rid)
		}
		rowTables = append(rowTables, oid)
	}
	tableOIDs := make([]OID, 0, len(st.tableLocks))
	for oid := range st.tableLocks {
		tableOIDs = append(tableOIDs, oid)
	}
	delete(m.txns, txn.ID())
	m.mu.Unlock()

	for _, oid := range tableOIDs {
		q := m.tableQ(oid)
		q.mu.Lock()
		q.remove(txn)
		q.tryGrantAll()
		q.mu.Unlock()
	}
	m.graph.removeTxn(txn)
}

func (m *Manager) unlockRowLocked(txn *transaction.TransactionID, oid OID, rid RID) {
	q := m.rowQ(oid, rid)
	q.mu.Lock()
	q.remove(txn)
	q.tryGrantAll()
	q.mu.Unlock()
}

func isIntention(mode Mode) bool {
	return mode == IntentionShared || mode == IntentionExclusive || mode == SharedIntentionExclusive
}

// runCycleDetection periodically scans the wait-for graph; any
// transaction found waiting on a cycle is woken (via its queue's
// condition variable) so waitUntilGranted can observe the cycle itself
// and abort. This mirrors the background sweep of the original
// implementation rather than synchronous detection on every wait.
func (m *Manager) runCycleDetection(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.broadcastAll()
		}
	}
}

// broadcastAll wakes every waiter across every queue so a blocked
// waitUntilGranted re-checks findCycle promptly instead of only at its
// next spurious wakeup.
func (m *Manager) broadcastAll() {
	m.mu.Lock()
	tableQs := make([]*requestQueue, 0, len(m.tableQueue))
	for _, q := range m.tableQueue {
		tableQs = append(tableQs, q)
	}
	rowQs := make([]*requestQueue, 0)
	for _, byRID := range m.rowQueue {
		for _, q := range byRID {
			rowQs = append(rowQs, q)
		}
	}
	m.mu.Unlock()

	for _, q := range tableQs {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	}
	for _, q := range rowQs {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}
