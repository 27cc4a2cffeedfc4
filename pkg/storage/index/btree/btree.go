// Package btree implements the latch-coupled B+Tree index (§4.4): a paged,
// duplicate-free ordered index built directly on top of pkg/buffer's pool.
// Each BTree owns a private buffer pool and disk file; page 0 is the
// header page holding the current root page id, latched exactly like any
// other page and treated as the root-id cell of §4.4/§5.
package btree

import (
	"sync"

	"storemy/pkg/buffer"
	dberror "storemy/pkg/error"
	"storemy/pkg/types"
)

// Config groups the tree's size knobs (§6).
type Config struct {
	LeafMax     int // max entries per leaf page before a split
	InternalMax int // max child pointers per internal page before a split
}

// DefaultConfig mirrors the spec's floor constraints (leaf_max >= 2,
// internal_max >= 3) with room for real workloads.
func DefaultConfig() Config {
	return Config{LeafMax: 64, InternalMax: 65}
}

func (c Config) leafMin() int     { return (c.LeafMax + 1) / 2 }
func (c Config) internalMin() int { return (c.InternalMax + 1) / 2 }

// BTree is a single index over one key type.
type BTree struct {
	pool    *buffer.Pool
	disk    buffer.DiskManager
	cfg     Config
	keyType types.Type

	// headerMu guards the in-memory root page id cache; the header page's
	// own latch is still acquired/released around every descent per the
	// root-id-cell discipline of §4.4, headerMu only protects the cached
	// copy used for the fast path.
	headerMu sync.RWMutex
	rootID   buffer.PageID
}

// New creates a B+Tree over a fresh or existing disk file, with keys of
// keyType. The header page (page 0) is created (root = invalid) if the
// file is empty, or read back if it already holds a tree.
func New(disk buffer.DiskManager, poolCfg buffer.Config, cfg Config, keyType types.Type) (*BTree, error) {
	pool := buffer.NewPool(poolCfg, disk)
	t := &BTree{pool: pool, disk: disk, cfg: cfg, keyType: keyType}

	header := pool.FetchPage(headerPageID)
	if header == nil {
		header = pool.NewPage()
		if header == nil || header.ID() != headerPageID {
			return nil, dberror.New(dberror.ErrCategorySystem, "BTREE_HEADER_ALLOC",
				"failed to allocate header page at id 0")
		}
		header.Latch()
		writeHeader(header, buffer.InvalidPageID)
		header.Unlatch()
		pool.UnpinPage(headerPageID, true)
		t.rootID = buffer.InvalidPageID
		return t, nil
	}

	header.RLatch()
	t.rootID = readHeader(header)
	header.RUnlatch()
	pool.UnpinPage(headerPageID, false)
	return t, nil
}

// Close flushes all resident pages and closes the backing disk file.
func (t *BTree) Close() error {
	t.pool.FlushAll()
	return t.disk.Close()
}

const headerPageID = buffer.PageID(0)

func writeHeader(p *buffer.Page, root buffer.PageID) {
	data := p.Data()
	v := uint64(root)
	for i := 0; i < 8; i++ {
		data[i] = byte(v >> (8 * i))
	}
}

func readHeader(p *buffer.Page) buffer.PageID {
	data := p.Data()
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(data[i]) << (8 * i)
	}
	return buffer.PageID(int64(v))
}

// getRootID returns the current root page id, taking the header's read
// latch (the root-id cell's RW-latch).
func (t *BTree) getRootID() buffer.PageID {
	header := t.pool.FetchPage(headerPageID)
	header.RLatch()
	id := readHeader(header)
	header.RUnlatch()
	t.pool.UnpinPage(headerPageID, false)
	return id
}

// setRootID installs a new root page id. Caller must hold the header's
// write latch already acquired via fetchHeaderForWrite.
func (t *BTree) setRootIDLocked(header *buffer.Page, root buffer.PageID) {
	writeHeader(header, root)
}

func (t *BTree) fetchHeaderForWrite() *buffer.Page {
	header := t.pool.FetchPage(headerPageID)
	header.Latch()
	return header
}

func (t *BTree) releaseHeaderWrite(header *buffer.Page, dirty bool) {
	header.Unlatch()
	t.pool.UnpinPage(headerPageID, dirty)
}
