package transaction

import "storemy/pkg/primitives"

// TransactionID is an alias of primitives.TransactionID so that the
// transaction package and the storage/index/log packages below it share
// one identity type instead of two incompatible ones.
type TransactionID = primitives.TransactionID

var (
	NewTransactionID          = primitives.NewTransactionID
	NewTransactionIDFromValue = primitives.NewTransactionIDFromValue
)
