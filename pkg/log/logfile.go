package log

import (
	"storemy/pkg/primitives"
	"storemy/pkg/storage/page"
)

type LogFile interface {
	LogTransactionBegin(tid *primitives.TransactionID) error
	LogCommit(tid *primitives.TransactionID) error
	LogAbort(tid *primitives.TransactionID) error
	LogUpdate(tid *primitives.TransactionID, before, after page.Page) error
	Close() error
}
