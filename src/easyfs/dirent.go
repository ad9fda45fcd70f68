package easyfs

import (
	"encoding/binary"

	"ustr"
)

// RootInode is the fixed inode number of the root directory, matching
// the original easy-fs's convention of reserving inode 0 for it.
const RootInode uint32 = 0

// DirEntrySize is the packed on-disk size of one DirEntry.
const DirEntrySize = ustr.DirNameLen + 4

// DirEntry is this port's flat directory-entry format ([ADD] per
// spec.md §4.7, since the distilled spec describes DiskInode addressing
// but not a concrete directory layout beyond "type ∈ {File, Directory}"):
// a fixed-width name plus the inode number it resolves to.
type DirEntry struct {
	Name    ustr.Ustr
	InodeID uint32
}

// Encode packs the entry into its on-disk representation.
func (e DirEntry) Encode() []byte {
	buf := make([]byte, DirEntrySize)
	name := e.Name.ToDirName()
	copy(buf[:ustr.DirNameLen], name[:])
	binary.LittleEndian.PutUint32(buf[ustr.DirNameLen:], e.InodeID)
	return buf
}

// DecodeDirEntry unpacks a DirEntry from a DirEntrySize-byte buffer.
func DecodeDirEntry(buf []byte) DirEntry {
	var name [ustr.DirNameLen]byte
	copy(name[:], buf[:ustr.DirNameLen])
	return DirEntry{
		Name:    ustr.FromDirName(name),
		InodeID: binary.LittleEndian.Uint32(buf[ustr.DirNameLen:]),
	}
}
