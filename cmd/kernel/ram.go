// cmd/kernel's RAM type is the host-simulated backing store standing in
// for physical memory, the same role the teacher's host-file-backed
// ahci_disk_t plays for a storage device that isn't really there. A
// bare-metal build would instead reinterpret the physical address
// itself as a pointer once running with an identity-mapped (or Bare)
// satp; a hosted Go process has no such access to raw physical memory,
// so RAM models it as one flat byte slice sized to MEMORY_END, indexed
// directly by physical address, consistent with vmm.NewKernelSpace's
// own identity map starting at VPN/PPN 0.
package main

import (
	"unsafe"

	"addr"
	"pte"
)

// RAM is the BackingMem (pgtbl.PhysMem + pgtbl.ByteAccess) every address
// space's frames live in.
type RAM struct {
	buf []byte
}

// NewRAM allocates a zero-filled RAM window of size bytes.
func NewRAM(size uint64) *RAM {
	return &RAM{buf: make([]byte, size)}
}

// ReadPTEs reinterprets the 4 KiB frame at ppn as a page table's 512
// entries, mirroring how the page-table walker dereferences a PPN on
// real hardware: the frame's bytes are the table.
func (r *RAM) ReadPTEs(ppn addr.PhysPageNum) *[512]pte.PTE {
	off := uint64(ppn) * addr.PageSize
	return (*[512]pte.PTE)(unsafe.Pointer(&r.buf[off]))
}

// Bytes returns the n raw bytes at physical address pa.
func (r *RAM) Bytes(pa addr.PhysAddr, n int) []byte {
	return r.buf[uint64(pa) : uint64(pa)+uint64(n)]
}
