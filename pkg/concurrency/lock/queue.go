package lock

import (
	"storemy/pkg/concurrency/transaction"
	"sync"
)

// requestQueue is the FIFO wait/hold queue for one lockable resource (one
// table oid, or one row RID). Requests are granted strictly in arrival
// order: a request can be granted only once every request ahead of it in
// the queue is both granted and compatible with it.
type requestQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	requests  []*request
	upgrading *transaction.TransactionID // non-nil while a request is mid-upgrade
}

func newRequestQueue() *requestQueue {
	q := &requestQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// findByTxn returns the request belonging to txn, or nil.
func (q *requestQueue) findByTxn(txn *transaction.TransactionID) *request {
	for _, r := range q.requests {
		if r.txn.Equals(txn) {
			return r
		}
	}
	return nil
}

// canGrant reports whether target (already in the queue) may be granted
// right now: the FIFO scan stops as soon as it reaches target, failing if
// any predecessor is still ungranted, and otherwise checking mode
// compatibility against every granted predecessor.
func (q *requestQueue) canGrant(target *request) bool {
	for _, r := range q.requests {
		if r == target {
			return true
		}
		if !r.granted {
			return false
		}
		if !compatible(r.mode, target.mode) {
			return false
		}
	}
	return true
}

// tryGrantAll grants every request that can be granted, scanning
// front-to-back and stopping at the first ungranted, non-grantable
// request (preserving FIFO fairness). Returns true if anything changed.
func (q *requestQueue) tryGrantAll() bool {
	changed := false
	for _, r := range q.requests {
		if r.granted {
			continue
		}
		if !q.canGrant(r) {
			break
		}
		r.granted = true
		changed = true
	}
	if changed {
		q.cond.Broadcast()
	}
	return changed
}

// remove deletes txn's request from the queue.
func (q *requestQueue) remove(txn *transaction.TransactionID) {
	for i, r := range q.requests {
		if r.txn.Equals(txn) {
			q.requests = append(q.requests[:i], q.requests[i+1:]...)
			return
		}
	}
}

// holders returns the transactions holding a granted lock, excluding self.
func (q *requestQueue) holders(self *transaction.TransactionID) []*transaction.TransactionID {
	var out []*transaction.TransactionID
	for _, r := range q.requests {
		if r.granted && !r.txn.Equals(self) {
			out = append(out, r.txn)
		}
	}
	return out
}
