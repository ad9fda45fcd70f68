// Package vmm implements a task's address space (§4.3): a MemSet owns a
// page table plus the list of MapArea regions mapped into it (the kernel's
// identity map and trampoline, or a user task's ELF segments, heap and
// stack; a user space's trampoline and TRAP_CONTEXT pages are mapped
// outside that list). This is the Go reshaping of the teacher's Vm_t
// (vm/as.go): the lock-protected pmap-plus-region-list shape survives,
// but the copy-on-write fault machinery (Sys_pgfault, Page_insert,
// Blockpage_insert, Tlbshoot, Vmadd_sharefile/shareanon) does not, since
// this kernel's Non-goals exclude demand paging and any multi-hart TLB
// shootdown story — every user page is allocated and mapped eagerly at
// fork/exec time.
package vmm

import (
	"fmt"
	"sort"
	"sync"

	"addr"
	"defs"
	"pgtbl"
	"pte"
)

/// MapType distinguishes an identity ("direct") mapping, used for the
/// kernel's own address space, from a freshly allocated ("framed")
/// mapping, used for user segments and stacks.
type MapType int

const (
	Identical MapType = iota
	Framed
)

/// MapArea is one contiguous, uniformly-permissioned region of an
/// address space, the Go analogue of the teacher's Vminfo_t trimmed to
/// the two mapping kinds this kernel needs.
type MapArea struct {
	StartVPN addr.VirtPageNum
	EndVPN   addr.VirtPageNum
	Kind     MapType
	Perm     pte.Flag
	// frames backs Framed areas only: the physical page owning each
	// virtual page in [StartVPN, EndVPN), in order.
	frames []addr.PhysPageNum
}

/// NewArea builds a MapArea covering [startVA, endVA), rounded out to
/// whole pages the way the specification's area constructors always do.
func NewArea(startVA, endVA addr.VirtAddr, kind MapType, perm pte.Flag) MapArea {
	return MapArea{StartVPN: startVA.Floor(), EndVPN: endVA.Ceil(), Kind: kind, Perm: perm}
}

func (a *MapArea) vpns() []addr.VirtPageNum {
	out := make([]addr.VirtPageNum, 0, int(a.EndVPN-a.StartVPN))
	for v := a.StartVPN; v < a.EndVPN; v++ {
		out = append(out, v)
	}
	return out
}

/// FrameSource is the physical-frame allocator every MemSet maps
/// through.
type FrameSource interface {
	Alloc() (addr.PhysPageNum, bool)
	Dealloc(addr.PhysPageNum)
}

/// BackingMem is the physical memory a MemSet's page-table frames and
/// data frames both live in; a real kernel backs it with identity-mapped
/// RAM, tests with a plain byte slice.
type BackingMem interface {
	pgtbl.PhysMem
	pgtbl.ByteAccess
}

/// MemSet is one task's (or the kernel's) complete address space: a page
/// table plus the ordered list of areas mapped into it.
type MemSet struct {
	sync.Mutex
	PageTable *pgtbl.PageTable_t
	areas     []*MapArea
	src       FrameSource
	mem       BackingMem
}

/// New builds an empty address space backed by src for frame allocation
/// and mem for reading/writing page-table and data frames.
func New(src FrameSource, mem BackingMem) (*MemSet, error) {
	pt, err := pgtbl.New(src, mem)
	if err != nil {
		return nil, err
	}
	return &MemSet{PageTable: pt, src: src, mem: mem}, nil
}

/// Token returns the satp value to load when switching to this address
/// space.
func (ms *MemSet) Token() uint64 { return ms.PageTable.Token() }

/// Backing returns the physical memory this address space's frames live
/// in, for callers (src/syscall's user-memory accessors) that need to
/// read or write bytes through a translated address alongside the page
/// table itself.
func (ms *MemSet) Backing() BackingMem { return ms.mem }

/// PushArea maps area into this address space. For a Framed area with no
/// frames yet assigned, it allocates one frame per virtual page; an
/// Identical area maps each virtual page directly onto the physical page
/// of the same number (used only for the kernel's own space, where
/// physical memory is identity-mapped).
func (ms *MemSet) PushArea(area MapArea, data []byte) error {
	ms.Lock()
	defer ms.Unlock()
	return ms.mapArea(&area, data)
}

func (ms *MemSet) mapArea(area *MapArea, data []byte) error {
	for _, vpn := range area.vpns() {
		var ppn addr.PhysPageNum
		switch area.Kind {
		case Identical:
			ppn = addr.PhysPageNum(vpn)
		case Framed:
			p, ok := ms.src.Alloc()
			if !ok {
				return fmt.Errorf("vmm: out of frames mapping vpn %#x", vpn)
			}
			ppn = p
			area.frames = append(area.frames, ppn)
		}
		if err := ms.PageTable.Map(vpn, ppn, pte.FlagsFromPerm(area.Perm)); err != nil {
			return err
		}
	}
	if data != nil {
		ms.copyIn(area, data)
	}
	ms.areas = append(ms.areas, area)
	return nil
}

// copyIn writes data into a freshly mapped Framed area, page by page, the
// way the specification's loader copies each ELF segment's file bytes
// into its backing frames. Any page bytes past len(data) — including an
// entire page, for a segment whose MemSz extends past its Filesz — are
// zeroed rather than left as whatever the frame previously held, so a
// segment's BSS tail (§4.3) always reads back as zero.
func (ms *MemSet) copyIn(area *MapArea, data []byte) {
	for i, ppn := range area.frames {
		start := i * addr.PageSize
		end := start + addr.PageSize
		dst := ms.mem.Bytes(ppn.PhysAddr(), addr.PageSize)
		if start >= len(data) {
			for j := range dst {
				dst[j] = 0
			}
			continue
		}
		if end > len(data) {
			end = len(data)
		}
		n := copy(dst, data[start:end])
		for j := n; j < len(dst); j++ {
			dst[j] = 0
		}
	}
}

/// FindArea returns the MapArea covering vpn, if any.
func (ms *MemSet) FindArea(vpn addr.VirtPageNum) (*MapArea, bool) {
	ms.Lock()
	defer ms.Unlock()
	for _, a := range ms.areas {
		if vpn >= a.StartVPN && vpn < a.EndVPN {
			return a, true
		}
	}
	return nil, false
}

/// HighestUserVPN returns one page past the end of the last mapped user
/// area, the base every fresh heap/stack grows from.
func (ms *MemSet) HighestUserVPN() addr.VirtPageNum {
	ms.Lock()
	defer ms.Unlock()
	var max addr.VirtPageNum
	for _, a := range ms.areas {
		if a.EndVPN > max {
			max = a.EndVPN
		}
	}
	return max
}

/// GrowHeap extends (or shrinks) the mutable heap area by deltaBytes,
/// the backing operation for the sbrk syscall (§4.6.1). It returns the
/// address space's break point before the change.
func (ms *MemSet) GrowHeap(heapBottomVPN addr.VirtPageNum, deltaBytes int) (addr.VirtAddr, defs.Err_t) {
	ms.Lock()
	defer ms.Unlock()
	var heap *MapArea
	for _, a := range ms.areas {
		if a.StartVPN == heapBottomVPN {
			heap = a
			break
		}
	}
	if heap == nil {
		return 0, defs.EINVAL
	}
	oldBreak := heap.EndVPN.VirtAddr()
	if deltaBytes == 0 {
		return oldBreak, 0
	}
	if deltaBytes > 0 {
		newEnd := addr.VirtAddr(uint64(oldBreak) + uint64(deltaBytes)).Ceil()
		for vpn := heap.EndVPN; vpn < newEnd; vpn++ {
			p, ok := ms.src.Alloc()
			if !ok {
				return 0, defs.ENOMEM
			}
			if err := ms.PageTable.Map(vpn, p, pte.FlagsFromPerm(heap.Perm)); err != nil {
				return 0, defs.ENOMEM
			}
			heap.frames = append(heap.frames, p)
		}
		heap.EndVPN = newEnd
		return oldBreak, 0
	}
	shrinkBy := addr.VirtPageNum((-deltaBytes + addr.PageSize - 1) / addr.PageSize)
	if shrinkBy > heap.EndVPN-heap.StartVPN {
		return 0, defs.EINVAL
	}
	for i := 0; i < int(shrinkBy); i++ {
		last := heap.EndVPN - 1
		ms.PageTable.Unmap(last)
		n := len(heap.frames)
		ms.src.Dealloc(heap.frames[n-1])
		heap.frames = heap.frames[:n-1]
		heap.EndVPN = last
	}
	return oldBreak, 0
}

/// Teardown releases every frame and page-table frame this address
/// space owns.
func (ms *MemSet) Teardown() {
	ms.Lock()
	defer ms.Unlock()
	for _, a := range ms.areas {
		for _, f := range a.frames {
			ms.src.Dealloc(f)
		}
	}
	ms.areas = nil
	ms.PageTable.Teardown()
}

/// sortedAreas returns areas ordered by starting VPN, used by Debug
/// dumps and tests wanting deterministic output.
func (ms *MemSet) sortedAreas() []*MapArea {
	out := append([]*MapArea(nil), ms.areas...)
	sort.Slice(out, func(i, j int) bool { return out[i].StartVPN < out[j].StartVPN })
	return out
}
