package vmm

import (
	"fmt"

	"addr"
	"memlayout"
	"pte"
)

/// CloneUserSpace builds a fresh address space that is a full, eager
/// copy of parent's Framed areas (§4.5: fork). Unlike the teacher's
/// fork, which installs copy-on-write mappings shared with the parent
/// (vm/as.go's PTE_COW machinery), this kernel's Non-goals exclude COW
/// entirely, so every page is duplicated immediately: simpler, and
/// correct for a kernel with no reclaim-under-memory-pressure story.
///
/// trampolinePPN and trapCxPPN are re-mapped into the child directly,
/// the same way NewUserSpace maps them into a freshly exec'd task: both
/// are outside parent.areas (mapped once, outside the area list, by
/// NewUserSpace), so walking parent.areas alone would
/// otherwise leave a forked child with no trampoline or TRAP_CONTEXT
/// mapping at all (§4.3: "the trampoline is re-mapped (identical PPN,
/// shared read-only)" on fork).
func CloneUserSpace(src FrameSource, mem BackingMem, parent *MemSet, trampolinePPN, trapCxPPN addr.PhysPageNum) (*MemSet, error) {
	parent.Lock()
	defer parent.Unlock()

	child, err := New(src, mem)
	if err != nil {
		return nil, err
	}
	for _, a := range parent.areas {
		childArea := &MapArea{StartVPN: a.StartVPN, EndVPN: a.EndVPN, Kind: a.Kind, Perm: a.Perm}
		switch a.Kind {
		case Identical:
			for vpn := a.StartVPN; vpn < a.EndVPN; vpn++ {
				if err := child.PageTable.Map(vpn, addr.PhysPageNum(vpn), pte.FlagsFromPerm(a.Perm)); err != nil {
					return nil, err
				}
			}
		case Framed:
			for i, vpn := 0, a.StartVPN; vpn < a.EndVPN; i, vpn = i+1, vpn+1 {
				newPPN, ok := src.Alloc()
				if !ok {
					child.Teardown()
					return nil, fmt.Errorf("vmm: out of frames cloning address space")
				}
				srcBytes := mem.Bytes(a.frames[i].PhysAddr(), addr.PageSize)
				dstBytes := mem.Bytes(newPPN.PhysAddr(), addr.PageSize)
				copy(dstBytes, srcBytes)
				if err := child.PageTable.Map(vpn, newPPN, pte.FlagsFromPerm(a.Perm)); err != nil {
					return nil, err
				}
				childArea.frames = append(childArea.frames, newPPN)
			}
		}
		child.areas = append(child.areas, childArea)
	}

	if err := child.PageTable.Map(addr.VirtAddr(memlayout.TRAMPOLINE).Floor(), trampolinePPN, pte.R|pte.X); err != nil {
		return nil, err
	}
	if err := child.PageTable.Map(addr.VirtAddr(memlayout.TRAP_CONTEXT).Floor(), trapCxPPN, pte.R|pte.W); err != nil {
		return nil, err
	}
	return child, nil
}
