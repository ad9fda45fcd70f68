package vmm

import (
	"debug/elf"
	"fmt"

	"addr"
	"elfload"
	"memlayout"
	"pte"
)

/// UserSpaceResult is everything NewUserSpace produces that the task
/// layer (§4.5) needs to finish constructing a TCB: the address space
/// itself, the entry point, the initial stack pointer and the base
/// virtual page number of the heap area so later sbrk calls can find it.
type UserSpaceResult struct {
	MemSet    *MemSet
	Entry     uint64
	UserStack addr.VirtAddr
	HeapBase  addr.VirtPageNum
}

func progFlagsToPerm(f elf.ProgFlag) pte.Flag {
	p := pte.U
	if f&elf.PF_R != 0 {
		p |= pte.R
	}
	if f&elf.PF_W != 0 {
		p |= pte.W
	}
	if f&elf.PF_X != 0 {
		p |= pte.X
	}
	return p
}

/// NewUserSpace builds a fresh task address space from a parsed ELF
/// image's loadable segments (§4.5: exec), following them with a guard
/// page, a zero-length heap area immediately above the highest loaded
/// segment, a guard page, and the fixed-size user stack, then finally
/// the trampoline and TRAP_CONTEXT mappings every address space carries.
func NewUserSpace(src FrameSource, mem BackingMem, trampolinePPN addr.PhysPageNum, trapCxPPN addr.PhysPageNum, img *elfload.Image) (*UserSpaceResult, error) {
	ms, err := New(src, mem)
	if err != nil {
		return nil, err
	}
	var highestVPN addr.VirtPageNum
	for _, s := range img.Segments {
		if s.MemSz == 0 {
			continue
		}
		startVA := addr.VirtAddr(s.VAddr)
		// A segment's mapped range spans its full memory image, not just
		// its file-backed bytes: p_memsz can exceed p_filesz, with the
		// tail being BSS that copyIn zero-fills (§4.3).
		endVA := addr.VirtAddr(s.VAddr + s.MemSz)
		area := NewArea(startVA, endVA, Framed, progFlagsToPerm(s.Flags))
		if err := ms.PushArea(area, s.Data); err != nil {
			return nil, fmt.Errorf("vmm: mapping segment at %#x: %w", s.VAddr, err)
		}
		if area.EndVPN > highestVPN {
			highestVPN = area.EndVPN
		}
	}
	// one guard page, then the heap: an initially empty Framed area that
	// GrowHeap extends on sbrk.
	heapBase := highestVPN + 1
	heap := MapArea{StartVPN: heapBase, EndVPN: heapBase, Kind: Framed, Perm: pte.R | pte.W | pte.U}
	ms.Lock()
	ms.areas = append(ms.areas, &heap)
	ms.Unlock()

	// the user stack sits just below TRAP_CONTEXT, sized USER_STACK_SIZE,
	// with one guard page beneath it (§3).
	stackTop := addr.VirtAddr(memlayout.TRAP_CONTEXT)
	stackBottom := addr.VirtAddr(uint64(stackTop) - memlayout.USER_STACK_SIZE)
	stackArea := NewArea(stackBottom, stackTop, Framed, pte.R|pte.W|pte.U)
	if err := ms.PushArea(stackArea, nil); err != nil {
		return nil, fmt.Errorf("vmm: mapping user stack: %w", err)
	}

	if err := ms.PageTable.Map(addr.VirtAddr(memlayout.TRAMPOLINE).Floor(), trampolinePPN, pte.R|pte.X); err != nil {
		return nil, err
	}
	if err := ms.PageTable.Map(addr.VirtAddr(memlayout.TRAP_CONTEXT).Floor(), trapCxPPN, pte.R|pte.W); err != nil {
		return nil, err
	}

	return &UserSpaceResult{MemSet: ms, Entry: img.Entry, UserStack: stackTop, HeapBase: heapBase}, nil
}
