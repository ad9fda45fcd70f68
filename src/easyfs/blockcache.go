// Package easyfs implements the easy-fs on-disk layout: a superblock,
// inode and data bitmaps, a direct/indirect-indexed DiskInode, and a
// write-back block cache sitting on top of a blockdev.BlockDevice.
// Adapted from the original easy-fs's layout.rs/bitmap.rs/block_cache.rs,
// with Arc<Mutex<BlockCache>> reference counting replaced by an explicit
// Manager.Get/Manager.Put pair since Go has no strong-count-on-drop primitive.
package easyfs

import (
	"fmt"
	"sync"

	"blockdev"
)

// BlockSize mirrors blockdev.BlockSize; easy-fs structures are laid out
// against it directly rather than importing blockdev into every file.
const BlockSize = blockdev.BlockSize

// CacheSize is the maximum number of blocks the manager keeps resident.
const CacheSize = 16

// BlockCache holds one block's worth of bytes in memory, writing back to
// the device on Sync (or when the Manager evicts it) iff modified.
type BlockCache struct {
	mu       sync.Mutex
	data     [BlockSize]byte
	blockID  int
	dev      blockdev.BlockDevice
	modified bool
	refs     int
}

func newBlockCache(blockID int, dev blockdev.BlockDevice) *BlockCache {
	bc := &BlockCache{blockID: blockID, dev: dev}
	dev.ReadBlock(blockID, bc.data[:])
	return bc
}

// Read runs f against the bytes at offset without marking the cache
// modified.
func (bc *BlockCache) Read(offset int, length int, f func([]byte)) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if offset < 0 || offset+length > BlockSize {
		panic(fmt.Sprintf("easyfs: block cache read [%d,%d) out of range", offset, offset+length))
	}
	f(bc.data[offset : offset+length])
}

// Modify runs f against the bytes at offset and marks the cache dirty.
func (bc *BlockCache) Modify(offset int, length int, f func([]byte)) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if offset < 0 || offset+length > BlockSize {
		panic(fmt.Sprintf("easyfs: block cache modify [%d,%d) out of range", offset, offset+length))
	}
	f(bc.data[offset : offset+length])
	bc.modified = true
}

// Sync writes the cache back to the device if it has been modified.
func (bc *BlockCache) Sync() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.syncLocked()
}

func (bc *BlockCache) syncLocked() {
	if bc.modified {
		bc.modified = false
		bc.dev.WriteBlock(bc.blockID, bc.data[:])
	}
}

// Manager keeps up to CacheSize blocks resident, evicting the first
// entry with no outstanding handles on a miss when full — the Go analog
// of the teacher's Arc::strong_count(&pair.1) == 1 check.
type Manager struct {
	mu      sync.Mutex
	order   []int
	entries map[int]*BlockCache
}

// NewManager returns an empty block cache manager.
func NewManager() *Manager {
	return &Manager{entries: make(map[int]*BlockCache)}
}

// Get returns the resident (or newly loaded) cache for blockID, bumping
// its reference count. Callers must call Put when done with the handle.
func (m *Manager) Get(blockID int, dev blockdev.BlockDevice) *BlockCache {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bc, ok := m.entries[blockID]; ok {
		bc.refs++
		return bc
	}

	if len(m.order) >= CacheSize {
		evicted := false
		for i, id := range m.order {
			bc := m.entries[id]
			if bc.refs == 0 {
				bc.Sync()
				delete(m.entries, id)
				m.order = append(m.order[:i], m.order[i+1:]...)
				evicted = true
				break
			}
		}
		if !evicted {
			panic("easyfs: block cache queue is full")
		}
	}

	bc := newBlockCache(blockID, dev)
	bc.refs = 1
	m.entries[blockID] = bc
	m.order = append(m.order, blockID)
	return bc
}

// Put releases a handle obtained from Get. It only drops the refcount;
// the cache stays resident (and unsynced) until a later Get miss evicts
// it or SyncAll flushes it.
func (m *Manager) Put(bc *BlockCache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bc.refs--
}

// SyncAll flushes every resident, modified block to the device.
func (m *Manager) SyncAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		m.entries[id].Sync()
	}
}
