package easyfs

import (
	"encoding/binary"

	"blockdev"
	"util"
)

// Magic identifies a formatted easy-fs image.
const Magic uint32 = 0x3b800001

// Direct/indirect addressing bounds, per spec.md §4.7: inner_id in
// [0,28) -> direct, [28,156) -> indirect1, [156, 156+16384) -> indirect2.
const (
	DirectCount    = 28
	Indirect1Count = BlockSize / 4          // 128
	Indirect2Count = Indirect1Count * Indirect1Count // 16384

	directBound    = DirectCount
	indirect1Bound = directBound + Indirect1Count
	indirect2Bound = indirect1Bound + Indirect2Count
)

// SuperBlock describes a formatted easy-fs image's block layout:
// [superblock | inode-bitmap | inode-area | data-bitmap | data-area].
type SuperBlock struct {
	Magic            uint32
	TotalBlocks      uint32
	InodeBitmapBlocks uint32
	InodeAreaBlocks  uint32
	DataBitmapBlocks uint32
	DataAreaBlocks   uint32
}

// superBlockWireSize is the on-disk size of SuperBlock: 6 uint32 fields.
const superBlockWireSize = 6 * 4

// Encode packs sb into a fresh BlockSize-byte block (the superblock
// occupies block 0 in its entirety; the rest is zero padding).
func (sb *SuperBlock) Encode() []byte {
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(buf[0:4], sb.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], sb.TotalBlocks)
	binary.LittleEndian.PutUint32(buf[8:12], sb.InodeBitmapBlocks)
	binary.LittleEndian.PutUint32(buf[12:16], sb.InodeAreaBlocks)
	binary.LittleEndian.PutUint32(buf[16:20], sb.DataBitmapBlocks)
	binary.LittleEndian.PutUint32(buf[20:24], sb.DataAreaBlocks)
	return buf
}

// DecodeSuperBlock unpacks a SuperBlock from a block-sized buffer.
func DecodeSuperBlock(buf []byte) *SuperBlock {
	return &SuperBlock{
		Magic:             binary.LittleEndian.Uint32(buf[0:4]),
		TotalBlocks:       binary.LittleEndian.Uint32(buf[4:8]),
		InodeBitmapBlocks: binary.LittleEndian.Uint32(buf[8:12]),
		InodeAreaBlocks:   binary.LittleEndian.Uint32(buf[12:16]),
		DataBitmapBlocks:  binary.LittleEndian.Uint32(buf[16:20]),
		DataAreaBlocks:    binary.LittleEndian.Uint32(buf[20:24]),
	}
}

// IsValid reports whether the superblock carries the easy-fs magic.
func (sb SuperBlock) IsValid() bool {
	return sb.Magic == Magic
}

// InodeType distinguishes a DiskInode's two supported kinds.
type InodeType uint32

const (
	TypeFile InodeType = iota
	TypeDirectory
)

// DiskInode is the on-disk inode record: 28 direct block pointers plus
// one indirect1 and one indirect2 pointer, packed so four fit in one
// 512-byte block (128 bytes each: 1 size + 28 direct + 1 indirect1 + 1
// indirect2 + 1 type = 32 uint32 words).
type DiskInode struct {
	Size      uint32
	Direct    [DirectCount]uint32
	Indirect1 uint32
	Indirect2 uint32
	Type      InodeType
}

// DiskInodeSize is the packed on-disk size of a DiskInode in bytes.
const DiskInodeSize = (1 + DirectCount + 1 + 1 + 1) * 4

// InodesPerBlock is how many DiskInode records fit in one block.
const InodesPerBlock = BlockSize / DiskInodeSize

// Init zeroes inode and sets its type, mirroring DiskInode::initialize.
func (d *DiskInode) Init(t InodeType) {
	*d = DiskInode{Type: t}
}

// IsDir reports whether the inode is a directory.
func (d *DiskInode) IsDir() bool { return d.Type == TypeDirectory }

// IsFile reports whether the inode is a regular file.
func (d *DiskInode) IsFile() bool { return d.Type == TypeFile }

func encodeIndirectBlock(ids []uint32) []byte {
	buf := make([]byte, BlockSize)
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], id)
	}
	return buf
}

func decodeIndirectEntry(buf []byte, idx int) uint32 {
	return binary.LittleEndian.Uint32(buf[idx*4 : idx*4+4])
}

// GetBlockID returns the data block id backing the innerID'th data
// block of this inode, following direct/indirect1/indirect2 in turn.
func (d *DiskInode) GetBlockID(innerID uint32, mgr *Manager, dev blockdev.BlockDevice) uint32 {
	idx := int(innerID)
	if idx >= indirect2Bound {
		panic("easyfs: inner block id out of range")
	}
	switch {
	case idx < directBound:
		return d.Direct[idx]
	case idx < indirect1Bound:
		return readIndirectEntry(mgr, dev, d.Indirect1, idx-directBound)
	default:
		idx -= indirect1Bound
		indirect1ID := readIndirectEntry(mgr, dev, d.Indirect2, idx/Indirect1Count)
		return readIndirectEntry(mgr, dev, indirect1ID, idx%Indirect1Count)
	}
}

func readIndirectEntry(mgr *Manager, dev blockdev.BlockDevice, blockID uint32, idx int) uint32 {
	bc := mgr.Get(int(blockID), dev)
	defer mgr.Put(bc)
	var v uint32
	bc.Read(0, BlockSize, func(buf []byte) {
		v = decodeIndirectEntry(buf, idx)
	})
	return v
}

func writeIndirectEntry(mgr *Manager, dev blockdev.BlockDevice, blockID uint32, idx int, val uint32) {
	bc := mgr.Get(int(blockID), dev)
	defer mgr.Put(bc)
	bc.Modify(0, BlockSize, func(buf []byte) {
		binary.LittleEndian.PutUint32(buf[idx*4:idx*4+4], val)
	})
}

func dataBlocksForSize(size uint32) uint32 {
	return (size + BlockSize - 1) / BlockSize
}

// DataBlocks returns the number of data blocks this inode's current
// size occupies.
func (d *DiskInode) DataBlocks() uint32 {
	return dataBlocksForSize(d.Size)
}

// TotalBlocks returns the number of blocks (data plus index blocks)
// needed to hold size bytes.
func TotalBlocks(size uint32) uint32 {
	data := dataBlocksForSize(size)
	total := data
	if data > indirect1Bound {
		total += 1 + 1 // indirect1 index block + indirect2 index block
		total += uint32(util.Roundup(int(data)-indirect1Bound, Indirect1Count) / Indirect1Count)
	} else if data > directBound {
		total++ // indirect1 index block
	}
	return total
}

// BlocksNumNeeded returns how many additional blocks must be allocated
// to grow this inode to newSize. newSize must be >= d.Size.
func (d *DiskInode) BlocksNumNeeded(newSize uint32) uint32 {
	if newSize < d.Size {
		panic("easyfs: BlocksNumNeeded called with a shrinking size")
	}
	return TotalBlocks(newSize) - TotalBlocks(d.Size)
}

// IncreaseSize grows the inode to newSize, consuming newBlocks (already
// allocated by the caller, in bitmap order) to fill direct slots first,
// then the indirect1 index block and its entries, then the indirect2
// index block, its entries, and their indirect1 children — exactly the
// fixed order blocks_num_needed counts against.
func (d *DiskInode) IncreaseSize(newSize uint32, newBlocks []uint32, mgr *Manager, dev blockdev.BlockDevice) {
	cur := int(d.DataBlocks())
	d.Size = newSize
	total := int(d.DataBlocks())
	next := 0
	take := func() uint32 {
		v := newBlocks[next]
		next++
		return v
	}

	for cur < util.Min(total, DirectCount) {
		d.Direct[cur] = take()
		cur++
	}
	if total <= DirectCount {
		return
	}

	if cur == DirectCount {
		d.Indirect1 = take()
	}
	cur -= DirectCount
	total -= DirectCount
	for cur < util.Min(total, Indirect1Count) {
		writeIndirectEntry(mgr, dev, d.Indirect1, cur, take())
		cur++
	}
	if total <= Indirect1Count {
		return
	}

	if cur == Indirect1Count {
		d.Indirect2 = take()
	}
	cur -= Indirect1Count
	total -= Indirect1Count

	a0, b0 := cur/Indirect1Count, cur%Indirect1Count
	a1, b1 := total/Indirect1Count, total%Indirect1Count
	for a0 < a1 || (a0 == a1 && b0 < b1) {
		if b0 == 0 {
			writeIndirectEntry(mgr, dev, d.Indirect2, a0, take())
		}
		indirect1ID := readIndirectEntry(mgr, dev, d.Indirect2, a0)
		writeIndirectEntry(mgr, dev, indirect1ID, b0, take())
		b0++
		if b0 == Indirect1Count {
			b0 = 0
			a0++
		}
	}
}

// encode/decode let a DiskInode be read out of / written into its slot
// in a cached inode-area block, used by the efs assembly layer.
func (d *DiskInode) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], d.Size)
	for i, v := range d.Direct {
		binary.LittleEndian.PutUint32(buf[4+i*4:8+i*4], v)
	}
	off := 4 + DirectCount*4
	binary.LittleEndian.PutUint32(buf[off:off+4], d.Indirect1)
	binary.LittleEndian.PutUint32(buf[off+4:off+8], d.Indirect2)
	binary.LittleEndian.PutUint32(buf[off+8:off+12], uint32(d.Type))
}

func decodeDiskInode(buf []byte) *DiskInode {
	d := &DiskInode{}
	d.Size = binary.LittleEndian.Uint32(buf[0:4])
	for i := range d.Direct {
		d.Direct[i] = binary.LittleEndian.Uint32(buf[4+i*4 : 8+i*4])
	}
	off := 4 + DirectCount*4
	d.Indirect1 = binary.LittleEndian.Uint32(buf[off : off+4])
	d.Indirect2 = binary.LittleEndian.Uint32(buf[off+4 : off+8])
	d.Type = InodeType(binary.LittleEndian.Uint32(buf[off+8 : off+12]))
	return d
}

// Layout is the block-count breakdown ComputeLayout derives from a
// requested total size and inode count, shared by the boot-time format
// path and cmd/mkfs so neither hand-derives it independently.
type Layout struct {
	TotalBlocks       uint32
	InodeBitmapBlocks uint32
	InodeAreaBlocks   uint32
	DataBitmapBlocks  uint32
	DataAreaBlocks    uint32
}

// ComputeLayout sizes an easy-fs image of totalBlocks blocks that must
// hold at least inodeCount inodes: one inode-bitmap block per 4096
// inodes, inodeCount/InodesPerBlock inode-area blocks (rounded up), the
// remainder split between the data bitmap and data area at a ratio of
// one data-bitmap block per 4096 data blocks.
func ComputeLayout(totalBlocks uint32, inodeCount uint32) Layout {
	inodeBitmapBlocks := uint32(util.Roundup(int(inodeCount), blockBits)) / blockBits
	if inodeBitmapBlocks == 0 {
		inodeBitmapBlocks = 1
	}
	inodeAreaBlocks := uint32(util.Roundup(int(inodeCount), InodesPerBlock)) / InodesPerBlock

	used := 1 + inodeBitmapBlocks + inodeAreaBlocks
	remaining := uint32(0)
	if totalBlocks > used {
		remaining = totalBlocks - used
	}
	// One data-bitmap block addresses blockBits data blocks; solve for
	// dataBitmapBlocks*blockBits + dataBitmapBlocks >= remaining.
	dataBitmapBlocks := (remaining + blockBits) / (blockBits + 1)
	dataAreaBlocks := remaining - dataBitmapBlocks

	return Layout{
		TotalBlocks:       totalBlocks,
		InodeBitmapBlocks: inodeBitmapBlocks,
		InodeAreaBlocks:   inodeAreaBlocks,
		DataBitmapBlocks:  dataBitmapBlocks,
		DataAreaBlocks:    dataAreaBlocks,
	}
}
