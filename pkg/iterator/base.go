package iterator

import (
	"fmt"
	"storemy/pkg/tuple"
)

// ReadNextFunc is the function signature for reading the next tuple from an iterator.
type ReadNextFunc func() (*tuple.Tuple, error)

// BaseIterator implements the caching logic and state management shared by
// BinaryOperator and UnaryOperator: it pulls from readNextFunc on demand and
// buffers one tuple of lookahead so HasNext can be called repeatedly without
// side effects.
type BaseIterator struct {
	nextTuple    *tuple.Tuple
	opened       bool
	readNextFunc ReadNextFunc
}

func NewBaseIterator(readNextFunc ReadNextFunc) *BaseIterator {
	return &BaseIterator{
		readNextFunc: readNextFunc,
	}
}

func (it *BaseIterator) HasNext() (bool, error) {
	if !it.opened {
		return false, fmt.Errorf("iterator not opened")
	}
	if it.nextTuple == nil {
		var err error
		it.nextTuple, err = it.readNextFunc()
		if err != nil {
			return false, err
		}
	}
	return it.nextTuple != nil, nil
}

func (it *BaseIterator) Next() (*tuple.Tuple, error) {
	if !it.opened {
		return nil, fmt.Errorf("iterator not opened")
	}
	if it.nextTuple == nil {
		var err error
		it.nextTuple, err = it.readNextFunc()
		if err != nil {
			return nil, err
		}
		if it.nextTuple == nil {
			return nil, fmt.Errorf("no more tuples")
		}
	}
	result := it.nextTuple
	it.nextTuple = nil
	return result, nil
}

func (it *BaseIterator) Close() error {
	it.nextTuple = nil
	it.opened = false
	return nil
}

func (it *BaseIterator) MarkOpened() {
	it.opened = true
	it.nextTuple = nil
}

// ClearCache discards any buffered lookahead tuple without closing the
// iterator, used by operators that need to re-probe readNextFunc from
// scratch (e.g. after an index scan is rewound).
func (it *BaseIterator) ClearCache() {
	it.nextTuple = nil
}

// Rewind clears the lookahead cache and leaves the iterator open so the
// next HasNext/Next call re-invokes readNextFunc. Callers are responsible
// for resetting whatever state readNextFunc closes over.
func (it *BaseIterator) Rewind() error {
	it.nextTuple = nil
	return nil
}
