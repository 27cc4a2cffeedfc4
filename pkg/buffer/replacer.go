package buffer

import (
	"sync"

	dberror "storemy/pkg/error"
)

// frameState is the per-frame replacer bookkeeping: a ring of up to k most
// recent access timestamps (oldest dropped), validity, and evictability.
type frameState struct {
	history   []uint64 // oldest first, capped at k
	valid     bool
	evictable bool
}

func newFrameState(k int) *frameState {
	return &frameState{history: make([]uint64, 0, k)}
}

func (f *frameState) access(ts uint64, k int) {
	f.history = append(f.history, ts)
	if len(f.history) > k {
		f.history = f.history[len(f.history)-k:]
	}
}

func (f *frameState) full(k int) bool { return len(f.history) >= k }

// timestamp is the comparison key for the replacer: the k-th most recent
// access if the history is full, else the single earliest access recorded
// (used only to break ties among infinite-distance frames).
func (f *frameState) timestamp() uint64 {
	if len(f.history) == 0 {
		return 0
	}
	return f.history[0]
}

func (f *frameState) reset() {
	f.history = f.history[:0]
	f.valid = false
	f.evictable = false
}

// LRUKReplacer selects eviction victims among evictable frames by backward
// k-distance: the gap between now and the k-th most recent access, or +∞
// if fewer than k accesses were recorded. Ties among infinite-distance
// frames are broken by earliest single access (classic LRU).
type LRUKReplacer struct {
	mu     sync.Mutex
	k      int
	size   int
	frames []*frameState
	clock  uint64
}

// NewLRUKReplacer creates a replacer over numFrames frame slots, each
// tracking up to k accesses.
func NewLRUKReplacer(numFrames, k int) *LRUKReplacer {
	r := &LRUKReplacer{k: k, frames: make([]*frameState, numFrames)}
	for i := range r.frames {
		r.frames[i] = newFrameState(k)
	}
	return r
}

// less reports whether frame a is a better eviction candidate than b,
// mirroring BusTub's comparator: a non-full history (infinite backward
// distance) always beats a full one; among equals, the earlier timestamp
// wins.
func less(a, b *frameState, k int) bool {
	af, bf := a.full(k), b.full(k)
	if af == bf {
		return a.timestamp() < b.timestamp()
	}
	return !af
}

// RecordAccess stamps the current logical timestamp on frameID. The first
// access on a frame makes it valid and evictable by default.
func (r *LRUKReplacer) RecordAccess(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.frames[frameID]
	if !f.valid {
		f.valid = true
		f.evictable = true
		r.size++
	}
	r.clock++
	f.access(r.clock, r.k)
}

// SetEvictable toggles whether frameID may be chosen as an eviction
// victim. A no-op on an invalid (never-accessed) frame.
func (r *LRUKReplacer) SetEvictable(frameID FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.frames[frameID]
	if !f.valid {
		return
	}
	if f.evictable != evictable {
		f.evictable = evictable
		if evictable {
			r.size++
		} else {
			r.size--
		}
	}
}

// Evict picks the best eviction candidate among evictable frames. Returns
// false if none is evictable.
func (r *LRUKReplacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	best := FrameID(-1)
	for i, f := range r.frames {
		if !f.evictable {
			continue
		}
		if best == -1 || less(f, r.frames[best], r.k) {
			best = FrameID(i)
		}
	}
	if best == -1 {
		return 0, false
	}
	r.frames[best].reset()
	r.size--
	return best, true
}

// Remove purges a frame's history entirely, e.g. when its page is deleted.
// It is a hard error to remove a non-evictable (pinned) frame.
func (r *LRUKReplacer) Remove(frameID FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.frames[frameID]
	if !f.valid {
		return nil
	}
	if !f.evictable {
		return dberror.New(dberror.ErrCategorySystem, "REPLACER_REMOVE_PINNED",
			"attempted to remove a non-evictable frame from the replacer")
	}
	f.reset()
	r.size--
	return nil
}

// Size reports the number of currently evictable frames.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}
