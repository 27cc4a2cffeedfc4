package buffer

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// hashableKey is satisfied by keys the extendible hash table can index.
// PageID is the only concrete use (buffer-pool page table), but the type
// stays generic so any fixed-width key could reuse it.
type hashableKey interface {
	~int64 | ~int32 | ~uint64
}

func hashKey[K hashableKey](k K) uint64 {
	var buf [8]byte
	v := uint64(k)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return xxhash.Sum64(buf[:])
}

type bucketEntry[K hashableKey, V any] struct {
	key K
	val V
}

type bucket[K hashableKey, V any] struct {
	localDepth int
	capacity   int
	entries    []bucketEntry[K, V]
}

func newBucket[K hashableKey, V any](depth, capacity int) *bucket[K, V] {
	return &bucket[K, V]{localDepth: depth, capacity: capacity}
}

func (b *bucket[K, V]) find(k K) (V, bool) {
	for _, e := range b.entries {
		if e.key == k {
			return e.val, true
		}
	}
	var zero V
	return zero, false
}

func (b *bucket[K, V]) insertOrUpdate(k K, v V) bool {
	for i, e := range b.entries {
		if e.key == k {
			b.entries[i].val = v
			return true
		}
	}
	if len(b.entries) >= b.capacity {
		return false
	}
	b.entries = append(b.entries, bucketEntry[K, V]{k, v})
	return true
}

func (b *bucket[K, V]) remove(k K) bool {
	for i, e := range b.entries {
		if e.key == k {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

// ExtendibleHashTable is the generic concurrent mapping used as the buffer
// pool's page table (§4.1). A single mutex guards the whole structure —
// coarse, but sufficient: page-table operations are O(1) and short-lived
// compared to page I/O.
type ExtendibleHashTable[K hashableKey, V any] struct {
	mu          sync.Mutex
	globalDepth int
	bucketSize  int
	dir         []*bucket[K, V]
	numBuckets  int
}

// NewExtendibleHashTable creates a table with one bucket of the given
// capacity at global depth 0.
func NewExtendibleHashTable[K hashableKey, V any](bucketSize int) *ExtendibleHashTable[K, V] {
	b := newBucket[K, V](0, bucketSize)
	return &ExtendibleHashTable[K, V]{
		globalDepth: 0,
		bucketSize:  bucketSize,
		dir:         []*bucket[K, V]{b},
		numBuckets:  1,
	}
}

func (h *ExtendibleHashTable[K, V]) indexOf(k K) int {
	mask := (1 << h.globalDepth) - 1
	return int(hashKey(k)) & mask
}

// Find returns the value for k, if present.
func (h *ExtendibleHashTable[K, V]) Find(k K) (V, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dir[h.indexOf(k)].find(k)
}

// Remove deletes k. Reports whether it was present. Never merges buckets
// or shrinks the directory — the table only grows for the lifetime of the
// buffer pool it backs.
func (h *ExtendibleHashTable[K, V]) Remove(k K) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dir[h.indexOf(k)].remove(k)
}

// Insert adds or updates k→v, splitting buckets (and doubling the
// directory when needed) until the entry fits.
func (h *ExtendibleHashTable[K, V]) Insert(k K, v V) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		idx := h.indexOf(k)
		b := h.dir[idx]
		if b.insertOrUpdate(k, v) {
			return
		}
		h.splitBucket(idx)
	}
}

// splitBucket splits the bucket at directory slot idx, growing the
// directory first if the bucket's local depth has caught up to the
// global depth. Ported from BusTub's extendible_hash_table.cpp.
func (h *ExtendibleHashTable[K, V]) splitBucket(idx int) {
	old := h.dir[idx]
	if old.localDepth == h.globalDepth {
		oldSize := 1 << h.globalDepth
		newDir := make([]*bucket[K, V], oldSize*2)
		mask := oldSize - 1
		for i := range newDir {
			newDir[i] = h.dir[i&mask]
		}
		h.dir = newDir
		h.globalDepth++
	}

	newDepth := old.localDepth + 1
	b0 := newBucket[K, V](newDepth, h.bucketSize)
	b1 := newBucket[K, V](newDepth, h.bucketSize)
	h.numBuckets++

	oldDepth := old.localDepth
	localMask := 1 << oldDepth
	for i, slot := range h.dir {
		if slot != old {
			continue
		}
		if i&localMask != 0 {
			h.dir[i] = b1
		} else {
			h.dir[i] = b0
		}
	}

	for _, e := range old.entries {
		if int(hashKey(e.key))&localMask != 0 {
			b1.entries = append(b1.entries, e)
		} else {
			b0.entries = append(b0.entries, e)
		}
	}
}

// GlobalDepth reports the directory's current global depth.
func (h *ExtendibleHashTable[K, V]) GlobalDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.globalDepth
}

// NumBuckets reports the number of distinct buckets reachable from the
// directory.
func (h *ExtendibleHashTable[K, V]) NumBuckets() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.numBuckets
}
