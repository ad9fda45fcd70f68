package vmm

import (
	"addr"
	"memlayout"
	"pte"
)

/// NewKernelSpace builds the kernel's own address space: identity maps
/// for kernel text/data/stacks and a single framed trampoline mapping
/// shared by every address space (§3: "a single trampoline page,
/// identically mapped into every address space, bridges the satp
/// switch"). kernelEnd is the first physical page past the loaded kernel
/// image; memEnd is the board's physical memory ceiling (MEMORY_END).
func NewKernelSpace(src FrameSource, mem BackingMem, kernelEnd, memEnd addr.PhysPageNum, trampolinePPN addr.PhysPageNum) (*MemSet, error) {
	ms, err := New(src, mem)
	if err != nil {
		return nil, err
	}
	// Identity-map every physical page from page 0 up to MEMORY_END so
	// the kernel can dereference any physical address directly.
	area := MapArea{
		StartVPN: addr.VirtPageNum(0),
		EndVPN:   addr.VirtPageNum(memEnd),
		Kind:     Identical,
		Perm:     pte.R | pte.W | pte.X,
	}
	if err := ms.mapAreaLocked(&area, nil); err != nil {
		return nil, err
	}
	// The trampoline is mapped at the very top of every address space,
	// identically in kernel and user space, so that after satp is
	// switched the trap-return trampoline code is still executable at
	// the same PC (§3).
	tramp := MapArea{
		StartVPN: addr.VirtAddr(memlayout.TRAMPOLINE).Floor(),
		EndVPN:   addr.VirtAddr(memlayout.TRAMPOLINE).Floor() + 1,
		Kind:     Framed,
		Perm:     pte.R | pte.X,
	}
	tramp.frames = []addr.PhysPageNum{trampolinePPN}
	if err := ms.PageTable.Map(tramp.StartVPN, trampolinePPN, pte.FlagsFromPerm(tramp.Perm)); err != nil {
		return nil, err
	}
	ms.areas = append(ms.areas, &tramp)
	return ms, nil
}

// mapAreaLocked is mapArea without re-taking ms's lock, for callers that
// build a MemSet before it is shared (construction time only).
func (ms *MemSet) mapAreaLocked(area *MapArea, data []byte) error {
	return ms.mapArea(area, data)
}
