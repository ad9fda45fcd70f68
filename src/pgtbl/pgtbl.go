// Package pgtbl implements the SV39 three-level page table (§4.2): walk,
// map, unmap, and translation of a single page table, plus the
// translated_byte_buffer / translated_str / translated_ref_mut helpers
// that let kernel code in src/syscall dereference pointers a task passed
// in its own address space. This is the Go-idiom reshaping of the
// teacher's per-process page-table walk in mem/mem.go (Pmap lookups),
// generalized from x86-64's 4-level tree to SV39's 3 levels and stripped
// of the PCD/huge-page special cases x86 needs and SV39 (as scoped here)
// does not.
package pgtbl

import (
	"fmt"

	"addr"
	"pte"
)

/// FrameSource is the subset of frame.Allocator_t that a page table needs
/// to grow itself; kept as an interface so pgtbl does not import frame
/// directly and tests can supply a fake.
type FrameSource interface {
	Alloc() (addr.PhysPageNum, bool)
	Dealloc(addr.PhysPageNum)
}

/// PageTable_t is one SV39 page table: the root frame plus every frame it
/// has allocated for intermediate levels, tracked so Drop-equivalent
/// cleanup (teardown) can release them all.
type PageTable_t struct {
	Root   addr.PhysPageNum
	frames []addr.PhysPageNum
	src    FrameSource
	// mem gives access to the backing physical memory a page table frame
	// lives in. In a real kernel this is identity-mapped
	// physical RAM; tests substitute a plain byte slice.
	mem PhysMem
}

/// PhysMem abstracts over the byte-addressable physical memory backing
/// every frame, so pgtbl can be unit-tested without a real address space.
type PhysMem interface {
	ReadPTEs(ppn addr.PhysPageNum) *[512]pte.PTE
}

/// New allocates a fresh root frame and returns an empty page table.
func New(src FrameSource, mem PhysMem) (*PageTable_t, error) {
	root, ok := src.Alloc()
	if !ok {
		return nil, fmt.Errorf("pgtbl: out of frames for root")
	}
	clearFrame(mem, root)
	return &PageTable_t{Root: root, frames: []addr.PhysPageNum{root}, src: src, mem: mem}, nil
}

/// FromToken builds a non-owning view of an existing page table given its
/// root ppn (the satp "token" form, §3); used when translating another
/// task's user-space addresses without taking ownership of its frames.
func FromToken(root addr.PhysPageNum, mem PhysMem) *PageTable_t {
	return &PageTable_t{Root: root, mem: mem}
}

func clearFrame(mem PhysMem, ppn addr.PhysPageNum) {
	ptes := mem.ReadPTEs(ppn)
	for i := range ptes {
		ptes[i] = 0
	}
}

// findPTE walks the tree for vpn, allocating intermediate frames along
// the way when alloc is true. It returns nil if the entry does not exist
// and alloc is false.
func (pt *PageTable_t) findPTE(vpn addr.VirtPageNum, alloc bool) (*pte.PTE, error) {
	idx := vpn.Indices()
	ppn := pt.Root
	for level := 0; level < 2; level++ {
		ptes := pt.mem.ReadPTEs(ppn)
		p := &ptes[idx[level]]
		if !p.IsValid() {
			if !alloc {
				return nil, nil
			}
			next, ok := pt.src.Alloc()
			if !ok {
				return nil, fmt.Errorf("pgtbl: out of frames walking level %d", level)
			}
			clearFrame(pt.mem, next)
			pt.frames = append(pt.frames, next)
			*p = pte.Mk(next, pte.V)
		}
		ppn = p.PPN()
	}
	ptes := pt.mem.ReadPTEs(ppn)
	return &ptes[idx[2]], nil
}

/// Map installs a leaf mapping vpn -> ppn with the given permission flags
/// (V is added automatically). It is an invariant violation to remap an
/// already-valid leaf, matching the teacher's "double map" panics.
func (pt *PageTable_t) Map(vpn addr.VirtPageNum, ppn addr.PhysPageNum, flags pte.Flag) error {
	p, err := pt.findPTE(vpn, true)
	if err != nil {
		return err
	}
	if p.IsValid() {
		panic(fmt.Sprintf("pgtbl: remap of already-mapped vpn %#x", vpn))
	}
	*p = pte.Mk(ppn, flags|pte.V)
	return nil
}

/// Unmap clears the leaf mapping for vpn. Unmapping an already-invalid
/// entry is a kernel invariant violation.
func (pt *PageTable_t) Unmap(vpn addr.VirtPageNum) {
	p, err := pt.findPTE(vpn, false)
	if err != nil {
		panic(err)
	}
	if p == nil || !p.IsValid() {
		panic(fmt.Sprintf("pgtbl: unmap of unmapped vpn %#x", vpn))
	}
	*p = 0
}

/// Translate looks up the leaf PTE for vpn without allocating, returning
/// ok=false if no mapping exists.
func (pt *PageTable_t) Translate(vpn addr.VirtPageNum) (pte.PTE, bool) {
	p, err := pt.findPTE(vpn, false)
	if err != nil || p == nil || !p.IsValid() {
		return 0, false
	}
	return *p, true
}

/// TranslateVA resolves a full virtual byte address to its physical byte
/// address, preserving the page offset.
func (pt *PageTable_t) TranslateVA(va addr.VirtAddr) (addr.PhysAddr, bool) {
	p, ok := pt.Translate(va.Floor())
	if !ok {
		return 0, false
	}
	return addr.PhysAddr(uint64(p.PPN())<<addr.PageShift | va.PageOffset()), true
}

/// Token returns the satp-format value for this page table: mode 8 (SV39)
/// in the top 4 bits, root PPN in the low 44 bits.
func (pt *PageTable_t) Token() uint64 {
	return 8<<60 | uint64(pt.Root)
}

/// Teardown releases every frame this page table owns back to its
/// source. A non-owning view built via FromToken has no frames and is a
/// no-op.
func (pt *PageTable_t) Teardown() {
	for _, f := range pt.frames {
		pt.src.Dealloc(f)
	}
	pt.frames = nil
}
