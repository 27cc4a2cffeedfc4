package buffer

import (
	"sync"

	dberror "storemy/pkg/error"
	"storemy/pkg/logging"
)

// Config groups the buffer pool's tunable knobs (§6).
type Config struct {
	PoolSize  int // number of resident frames
	ReplacerK int // LRU-K's k
}

// DefaultConfig returns the BusTub-style defaults used across the test
// suite: a small pool with k=2.
func DefaultConfig() Config {
	return Config{PoolSize: 16, ReplacerK: 2}
}

// Pool is the buffer pool manager (§4.3): it pins/unpins frames,
// coordinates eviction through the replacer, fetches/flushes pages through
// the disk manager, and issues fresh page ids. One mutex guards the whole
// structure; page-level content is protected separately by each Page's own
// latch.
type Pool struct {
	mu sync.Mutex

	disk     DiskManager
	replacer *LRUKReplacer
	frames   []Page
	freeList []FrameID
	pageTbl  *ExtendibleHashTable[PageID, FrameID]
}

// NewPool constructs a pool of cfg.PoolSize frames backed by disk.
func NewPool(cfg Config, disk DiskManager) *Pool {
	p := &Pool{
		disk:     disk,
		replacer: NewLRUKReplacer(cfg.PoolSize, cfg.ReplacerK),
		frames:   make([]Page, cfg.PoolSize),
		freeList: make([]FrameID, cfg.PoolSize),
		pageTbl:  NewExtendibleHashTable[PageID, FrameID](4),
	}
	for i := range p.freeList {
		p.freeList[i] = FrameID(cfg.PoolSize - 1 - i)
	}
	return p
}

// acquireFrame returns a frame ready to host a new resident page: from the
// free list if one is available, else from the replacer, writing back a
// dirty evictee first. Returns ok=false if every frame is pinned.
// Must be called with p.mu held.
func (p *Pool) acquireFrame() (FrameID, bool) {
	if n := len(p.freeList); n > 0 {
		f := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return f, true
	}

	fid, ok := p.replacer.Evict()
	if !ok {
		return 0, false
	}
	victim := &p.frames[fid]
	victim.RLatch()
	dirty := victim.isDirty
	id := victim.id
	data := victim.data
	victim.RUnlatch()
	if dirty {
		if err := p.disk.WritePage(id, &data); err != nil {
			logging.Error("buffer pool eviction write-back failed", "page", id, "err", err)
		}
	}
	p.pageTbl.Remove(id)
	return fid, true
}

// NewPage allocates a fresh page id, pins it in a frame, and returns it.
// Returns nil only when every frame is pinned (OutOfMemory, §7).
func (p *Pool) NewPage() *Page {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.acquireFrame()
	if !ok {
		return nil
	}
	id := p.disk.AllocatePage()
	frame := &p.frames[fid]
	frame.Latch()
	frame.reset(id)
	frame.pinCount = 1
	frame.Unlatch()

	p.pageTbl.Insert(id, fid)
	p.replacer.RecordAccess(fid)
	p.replacer.SetEvictable(fid, false)
	return frame
}

// FetchPage returns the page for id, pinning it. If not resident, it is
// read in from disk first. Returns nil only when every frame is pinned.
func (p *Pool) FetchPage(id PageID) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fid, ok := p.pageTbl.Find(id); ok {
		frame := &p.frames[fid]
		frame.Latch()
		frame.pinCount++
		frame.Unlatch()
		p.replacer.RecordAccess(fid)
		return frame
	}

	fid, ok := p.acquireFrame()
	if !ok {
		return nil
	}
	frame := &p.frames[fid]
	frame.Latch()
	frame.reset(id)
	if err := p.disk.ReadPage(id, &frame.data); err != nil {
		frame.Unlatch()
		logging.Error("buffer pool read failed", "page", id, "err", err)
		return nil
	}
	frame.pinCount = 1
	frame.Unlatch()

	p.pageTbl.Insert(id, fid)
	p.replacer.RecordAccess(fid)
	p.replacer.SetEvictable(fid, false)
	return frame
}

// UnpinPage decrements id's pin count, marking it dirty if isDirty is set.
// Once the pin count reaches zero the frame becomes evictable. Returns
// false if id is not resident or already unpinned.
func (p *Pool) UnpinPage(id PageID, isDirty bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTbl.Find(id)
	if !ok {
		return false
	}
	frame := &p.frames[fid]
	frame.Latch()
	defer frame.Unlatch()
	if frame.pinCount <= 0 {
		return false
	}
	if isDirty {
		frame.isDirty = true
	}
	frame.pinCount--
	if frame.pinCount == 0 {
		p.replacer.SetEvictable(fid, true)
	}
	return true
}

// FlushPage writes id through to disk unconditionally and clears its dirty
// flag. Returns false if id is not resident.
func (p *Pool) FlushPage(id PageID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	fid, ok := p.pageTbl.Find(id)
	if !ok {
		return false
	}
	frame := &p.frames[fid]
	frame.Latch()
	defer frame.Unlatch()
	if err := p.disk.WritePage(id, &frame.data); err != nil {
		logging.Error("buffer pool flush failed", "page", id, "err", err)
		return false
	}
	frame.isDirty = false
	return true
}

// FlushAll writes every resident page through to disk.
func (p *Pool) FlushAll() {
	p.mu.Lock()
	frames := make([]*Page, 0, len(p.frames))
	for i := range p.frames {
		if p.frames[i].pinCount >= 0 && p.frames[i].id != InvalidPageID {
			frames = append(frames, &p.frames[i])
		}
	}
	p.mu.Unlock()
	for _, f := range frames {
		p.FlushPage(f.ID())
	}
}

// DeletePage frees id, returning its frame to the free list. Idempotent if
// not resident; fails (returns false) if still pinned.
func (p *Pool) DeletePage(id PageID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTbl.Find(id)
	if !ok {
		return true, nil
	}
	frame := &p.frames[fid]
	frame.Latch()
	pinned := frame.pinCount > 0
	frame.Unlatch()
	if pinned {
		return false, nil
	}

	p.pageTbl.Remove(id)
	if err := p.replacer.Remove(fid); err != nil {
		return false, dberror.Wrap(err, "BUFFER_DELETE_REMOVE", "DeletePage", "Pool")
	}
	if err := p.disk.DeallocatePage(id); err != nil {
		return false, dberror.Wrap(err, "BUFFER_DELETE_DEALLOC", "DeletePage", "Pool")
	}
	frame.Latch()
	frame.reset(InvalidPageID)
	frame.Unlatch()
	p.freeList = append(p.freeList, fid)
	return true, nil
}
