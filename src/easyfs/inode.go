package easyfs

import (
	"ustr"
)

// Inode is a handle to one file or directory: an inode id plus the
// filesystem it lives on. It is the layer above DiskInode that walks
// direct/indirect block ids to serve byte-range reads and writes, and
// (for directories) flat arrays of DirEntry records.
type Inode struct {
	id  uint32
	efs *EasyFileSystem
}

// NewInode wraps inode id on efs.
func NewInode(id uint32, efs *EasyFileSystem) *Inode {
	return &Inode{id: id, efs: efs}
}

// ID returns the wrapped inode number.
func (n *Inode) ID() uint32 { return n.id }

// ReadAt copies min(len(buf), size-offset) bytes starting at offset
// into buf and returns the count read.
func (n *Inode) ReadAt(offset uint32, buf []byte) int {
	read := 0
	n.efs.ReadDiskInode(n.id, func(d *DiskInode) {
		if offset >= d.Size {
			return
		}
		end := offset + uint32(len(buf))
		if end > d.Size {
			end = d.Size
		}
		for cur := offset; cur < end; {
			blockEnd := (cur/BlockSize + 1) * BlockSize
			if blockEnd > end {
				blockEnd = end
			}
			blockID := d.GetBlockID(cur/BlockSize, n.efs.mgr, n.efs.dev)
			bc := n.efs.mgr.Get(int(blockID), n.efs.dev)
			inBlockOff := int(cur % BlockSize)
			length := int(blockEnd - cur)
			bc.Read(inBlockOff, length, func(src []byte) {
				copy(buf[read:read+length], src)
			})
			n.efs.mgr.Put(bc)
			read += length
			cur = blockEnd
		}
	})
	return read
}

// increaseSizeTo grows the inode's DiskInode record (and backing data
// blocks) to newSize, allocating whatever additional blocks
// BlocksNumNeeded reports.
func (n *Inode) increaseSizeTo(newSize uint32) {
	n.efs.ModifyDiskInode(n.id, func(d *DiskInode) {
		if newSize <= d.Size {
			return
		}
		needed := d.BlocksNumNeeded(newSize)
		blocks := make([]uint32, needed)
		for i := range blocks {
			blocks[i] = n.efs.AllocData()
		}
		d.IncreaseSize(newSize, blocks, n.efs.mgr, n.efs.dev)
	})
}

// WriteAt writes buf at offset, growing the inode if necessary, and
// returns the number of bytes written.
func (n *Inode) WriteAt(offset uint32, buf []byte) int {
	end := offset + uint32(len(buf))
	n.increaseSizeTo(end)

	written := 0
	n.efs.ReadDiskInode(n.id, func(d *DiskInode) {
		for cur := offset; cur < end; {
			blockEnd := (cur/BlockSize + 1) * BlockSize
			if blockEnd > end {
				blockEnd = end
			}
			blockID := d.GetBlockID(cur/BlockSize, n.efs.mgr, n.efs.dev)
			bc := n.efs.mgr.Get(int(blockID), n.efs.dev)
			inBlockOff := int(cur % BlockSize)
			length := int(blockEnd - cur)
			bc.Modify(inBlockOff, length, func(dst []byte) {
				copy(dst, buf[written:written+length])
			})
			n.efs.mgr.Put(bc)
			written += length
			cur = blockEnd
		}
	})
	return written
}

// Clear releases every data block (and index block) this inode owns
// and resets its size to zero.
func (n *Inode) Clear() {
	n.efs.ModifyDiskInode(n.id, func(d *DiskInode) {
		dataBlocks := int(d.DataBlocks())
		for i := 0; i < dataBlocks; i++ {
			n.efs.DeallocData(d.GetBlockID(uint32(i), n.efs.mgr, n.efs.dev))
		}
		if dataBlocks > DirectCount {
			n.efs.DeallocData(d.Indirect1)
		}
		if dataBlocks > indirect1Bound {
			a1 := (dataBlocks - indirect1Bound + Indirect1Count - 1) / Indirect1Count
			for a := 0; a < a1; a++ {
				id1 := readIndirectEntry(n.efs.mgr, n.efs.dev, d.Indirect2, a)
				n.efs.DeallocData(id1)
			}
			n.efs.DeallocData(d.Indirect2)
		}
		d.Size = 0
		d.Direct = [DirectCount]uint32{}
		d.Indirect1 = 0
		d.Indirect2 = 0
	})
}

// dirEntryCount returns the number of DirEntry records currently stored
// in a directory inode.
func (n *Inode) dirEntryCount() int {
	var size uint32
	n.efs.ReadDiskInode(n.id, func(d *DiskInode) { size = d.Size })
	return int(size) / DirEntrySize
}

// Ls lists the names in a directory inode.
func (n *Inode) Ls() []ustr.Ustr {
	count := n.dirEntryCount()
	names := make([]ustr.Ustr, 0, count)
	buf := make([]byte, DirEntrySize)
	for i := 0; i < count; i++ {
		n.ReadAt(uint32(i*DirEntrySize), buf)
		names = append(names, DecodeDirEntry(buf).Name)
	}
	return names
}

// Find looks up name in a directory inode and returns the child Inode,
// or nil if no entry matches.
func (n *Inode) Find(name ustr.Ustr) *Inode {
	count := n.dirEntryCount()
	buf := make([]byte, DirEntrySize)
	for i := 0; i < count; i++ {
		n.ReadAt(uint32(i*DirEntrySize), buf)
		e := DecodeDirEntry(buf)
		if e.Name.Eq(name) {
			return NewInode(e.InodeID, n.efs)
		}
	}
	return nil
}

// Create makes a new file inode named name inside this directory
// inode and returns it. It panics if name already exists.
func (n *Inode) Create(name ustr.Ustr) *Inode {
	if n.Find(name) != nil {
		panic("easyfs: directory entry already exists: " + name.String())
	}
	childID := n.efs.AllocInode()
	n.efs.ModifyDiskInode(childID, func(d *DiskInode) {
		d.Init(TypeFile)
	})

	entry := DirEntry{Name: name, InodeID: childID}
	count := n.dirEntryCount()
	n.WriteAt(uint32(count*DirEntrySize), entry.Encode())
	return NewInode(childID, n.efs)
}
