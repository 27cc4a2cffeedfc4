// Package lock implements multi-granularity two-phase locking: intention
// locks at table granularity and plain shared/exclusive locks at row
// granularity, with a background deadlock detector over the wait-for
// graph of blocked transactions.
package lock

import "storemy/pkg/concurrency/transaction"

// Mode is a lock mode. Table locks may take any of the five values; row
// locks are restricted to Shared and Exclusive.
type Mode int

const (
	IntentionShared Mode = iota
	IntentionExclusive
	Shared
	SharedIntentionExclusive
	Exclusive
)

func (m Mode) String() string {
	switch m {
	case IntentionShared:
		return "IS"
	case IntentionExclusive:
		return "IX"
	case Shared:
		return "S"
	case SharedIntentionExclusive:
		return "SIX"
	case Exclusive:
		return "X"
	default:
		return "UNKNOWN"
	}
}

// compatible reports whether a lock already held in mode `held` permits
// granting a new lock in mode `want` to a different transaction.
func compatible(held, want Mode) bool {
	row := compatMatrix[held]
	return row[want]
}

var compatMatrix = map[Mode][5]bool{
	// cols: IS    IX    S     SIX   X
	IntentionShared:          {true, true, true, true, false},
	IntentionExclusive:       {true, true, false, false, false},
	Shared:                   {true, false, true, false, false},
	SharedIntentionExclusive: {true, false, false, false, false},
	Exclusive:                {false, false, false, false, false},
}

// upgradeAllowed reports whether from->to is one of the lock-upgrade
// paths permitted by the multi-granularity protocol (strictly
// escalating, no redundant or conflicting jumps).
func upgradeAllowed(from, to Mode) bool {
	switch from {
	case IntentionShared:
		return to == Shared || to == Exclusive || to == IntentionExclusive || to == SharedIntentionExclusive
	case Shared:
		return to == Exclusive || to == SharedIntentionExclusive
	case IntentionExclusive:
		return to == Exclusive || to == SharedIntentionExclusive
	case SharedIntentionExclusive:
		return to == Exclusive
	default:
		return false
	}
}

// request is one entry in a lock's FIFO wait/hold queue.
type request struct {
	txn     *transaction.TransactionID
	mode    Mode
	granted bool
}
