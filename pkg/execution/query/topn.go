package query

import (
	"container/heap"
	"fmt"
	"storemy/pkg/iterator"
	"storemy/pkg/primitives"
	"storemy/pkg/tuple"
)

// TopN returns the first n tuples in sort order without materializing and
// sorting the entire input like Sort does. It keeps a bounded max-heap of at
// most n tuples keyed by the *opposite* of the requested direction, so the
// heap root is always the current worst candidate and can be evicted in
// O(log n) as better tuples arrive.
//
// Performance characteristics:
//   - Time: O(m log n) where m = input size, n = limit
//   - Space: O(n), independent of input size
//   - Blocking: must consume all input before producing the first output,
//     same as Sort, but with a much smaller memory footprint when n << m
type TopN struct {
	base         *iterator.BaseIterator
	child        iterator.DbIterator
	sorted       *iterator.SliceIterator[*tuple.Tuple]
	sortField    primitives.ColumnID
	ascending    bool
	n            int
	opened       bool
	materialized bool
}

// NewTopN creates a new TopN operator that keeps the n smallest (ascending)
// or largest (descending) tuples ordered by sortField.
func NewTopN(child iterator.DbIterator, sortField primitives.ColumnID, ascending bool, n int) (*TopN, error) {
	if child == nil {
		return nil, fmt.Errorf("child operator cannot be nil")
	}
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive, got %d", n)
	}

	td := child.GetTupleDesc()
	if td == nil {
		return nil, fmt.Errorf("child operator has nil tuple descriptor")
	}
	if sortField >= td.NumFields() {
		return nil, fmt.Errorf("sort field index %d out of bounds (schema has %d fields)",
			sortField, td.NumFields())
	}

	t := &TopN{
		child:     child,
		sortField: sortField,
		ascending: ascending,
		n:         n,
	}

	t.base = iterator.NewBaseIterator(t.readNext)
	return t, nil
}

// topNHeap is a container/heap.Interface over tuples, ordered so that Pop
// removes the current worst candidate for the requested direction: the
// largest tuple when ascending (we want to keep the smallest n), or the
// smallest tuple when descending (we want to keep the largest n).
type topNHeap struct {
	tuples    []*tuple.Tuple
	sortField primitives.ColumnID
	ascending bool
	err       error
}

func (h *topNHeap) Len() int { return len(h.tuples) }

func (h *topNHeap) Less(i, j int) bool {
	if h.err != nil {
		return false
	}

	fi, err := h.tuples[i].GetField(h.sortField)
	if err != nil || fi == nil {
		h.err = fmt.Errorf("failed to get sort field from tuple %d: %w", i, err)
		return false
	}
	fj, err := h.tuples[j].GetField(h.sortField)
	if err != nil || fj == nil {
		h.err = fmt.Errorf("failed to get sort field from tuple %d: %w", j, err)
		return false
	}

	// Invert the comparison: ascending order keeps a max-heap on top so the
	// worst (largest) candidate is what gets evicted.
	op := primitives.GreaterThan
	if !h.ascending {
		op = primitives.LessThan
	}

	worse, err := fi.Compare(op, fj)
	if err != nil {
		h.err = fmt.Errorf("failed to compare fields: %w", err)
		return false
	}
	return worse
}

func (h *topNHeap) Swap(i, j int) {
	h.tuples[i], h.tuples[j] = h.tuples[j], h.tuples[i]
}

func (h *topNHeap) Push(x any) {
	h.tuples = append(h.tuples, x.(*tuple.Tuple))
}

func (h *topNHeap) Pop() any {
	old := h.tuples
	last := old[len(old)-1]
	h.tuples = old[:len(old)-1]
	return last
}

// materialize consumes the entire child, keeping only the n best tuples in
// a bounded heap, then emits them in final sorted order.
func (t *TopN) materialize() error {
	if t.materialized {
		return nil
	}

	h := &topNHeap{sortField: t.sortField, ascending: t.ascending}

	for {
		hasNext, err := t.child.HasNext()
		if err != nil {
			return fmt.Errorf("error checking if child has next: %w", err)
		}
		if !hasNext {
			break
		}

		tup, err := t.child.Next()
		if err != nil {
			return fmt.Errorf("error fetching tuple from source: %w", err)
		}
		if tup == nil {
			break
		}

		if h.Len() < t.n {
			heap.Push(h, tup)
			if h.err != nil {
				return fmt.Errorf("error ranking tuple: %w", h.err)
			}
			continue
		}

		// h.tuples[0] is the current worst kept candidate; only replace it
		// if tup ranks better (i.e. the root is worse than tup).
		rootWorse, err := t.isWorse(h.tuples[0], tup)
		if err != nil {
			return err
		}
		if rootWorse {
			h.tuples[0] = tup
			heap.Fix(h, 0)
			if h.err != nil {
				return fmt.Errorf("error ranking tuple: %w", h.err)
			}
		}
	}

	result := make([]*tuple.Tuple, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		popped := heap.Pop(h).(*tuple.Tuple)
		if h.err != nil {
			return fmt.Errorf("error draining heap: %w", h.err)
		}
		result[i] = popped
	}

	t.sorted = iterator.NewSliceIterator(result)
	t.sorted.Open()
	t.materialized = true
	return nil
}

// isWorse reports whether candidate ranks worse than kept under t's sort
// direction (i.e. candidate would be evicted before kept).
func (t *TopN) isWorse(candidate, kept *tuple.Tuple) (bool, error) {
	cf, err := candidate.GetField(t.sortField)
	if err != nil || cf == nil {
		return false, fmt.Errorf("failed to get sort field from candidate: %w", err)
	}
	kf, err := kept.GetField(t.sortField)
	if err != nil || kf == nil {
		return false, fmt.Errorf("failed to get sort field from kept: %w", err)
	}

	op := primitives.GreaterThan
	if !t.ascending {
		op = primitives.LessThan
	}
	return cf.Compare(op, kf)
}

func (t *TopN) readNext() (*tuple.Tuple, error) {
	if !t.materialized {
		if err := t.materialize(); err != nil {
			return nil, err
		}
	}

	if t.sorted.Remaining() == 0 {
		return nil, nil
	}
	return t.sorted.Next()
}

// Open initializes TopN and opens its child. Materialization is deferred to
// the first read, same as Sort.
func (t *TopN) Open() error {
	if err := t.child.Open(); err != nil {
		return fmt.Errorf("failed to open child operator: %w", err)
	}

	t.opened = true
	t.materialized = false

	t.base.MarkOpened()
	return nil
}

// Close releases resources held by TopN and its child.
func (t *TopN) Close() error {
	t.opened = false
	t.materialized = false

	if t.sorted != nil {
		t.sorted.Close()
	}

	if err := t.child.Close(); err != nil {
		return fmt.Errorf("failed to close child operator: %w", err)
	}

	return t.base.Close()
}

// HasNext checks if there are more ranked tuples available.
func (t *TopN) HasNext() (bool, error) {
	if !t.opened {
		return false, fmt.Errorf("topn operator not opened")
	}
	return t.base.HasNext()
}

// Next returns the next ranked tuple.
func (t *TopN) Next() (*tuple.Tuple, error) {
	if !t.opened {
		return nil, fmt.Errorf("topn operator not opened")
	}
	return t.base.Next()
}

// Rewind resets TopN to the beginning of the ranked results without
// re-ranking the input.
func (t *TopN) Rewind() error {
	if !t.opened {
		return fmt.Errorf("topn operator not opened")
	}

	if t.sorted != nil {
		t.sorted.Rewind()
	}

	return t.base.Rewind()
}

// GetTupleDesc returns the tuple descriptor from the source. TopN does not
// modify the schema, only which tuples survive and their order.
func (t *TopN) GetTupleDesc() *tuple.TupleDescription {
	return t.child.GetTupleDesc()
}
