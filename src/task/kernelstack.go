package task

import (
	"addr"
	"memlayout"
	"pte"
)

/// FrameSource is the frame allocator a kernel stack maps through.
type FrameSource interface {
	Alloc() (addr.PhysPageNum, bool)
	Dealloc(addr.PhysPageNum)
}

/// PageTable is the subset of pgtbl.PageTable_t the kernel-stack mapper
/// needs, kept minimal so this file does not have to import pgtbl just
/// for a type it already knows how to talk to through vmm.MemSet.
type PageTable interface {
	Map(vpn addr.VirtPageNum, ppn addr.PhysPageNum, flags pte.Flag) error
	Unmap(vpn addr.VirtPageNum)
}

/// MapKernelStack allocates KERNEL_STACK_SIZE worth of frames and maps
/// them into the kernel's own page table at the fixed per-pid location
/// memlayout.KernelStackPosition describes (§3), leaving one unmapped
/// guard page below so a stack overflow faults instead of silently
/// corrupting the next task's stack.
func MapKernelStack(pt PageTable, src FrameSource, pid int) (bottom, top addr.VirtAddr, frames []addr.PhysPageNum, err error) {
	b, t := memlayout.KernelStackPosition(pid)
	bottom, top = addr.VirtAddr(b), addr.VirtAddr(t)
	for vpn := bottom.Floor(); vpn < top.Floor(); vpn++ {
		ppn, ok := src.Alloc()
		if !ok {
			return 0, 0, nil, errOutOfFrames
		}
		if e := pt.Map(vpn, ppn, pte.R|pte.W); e != nil {
			return 0, 0, nil, e
		}
		frames = append(frames, ppn)
	}
	return bottom, top, frames, nil
}

/// UnmapKernelStack releases a task's kernel stack: its page-table
/// entries and the physical frames MapKernelStack allocated for it.
func UnmapKernelStack(pt PageTable, src FrameSource, bottom, top addr.VirtAddr, frames []addr.PhysPageNum) {
	i := 0
	for vpn := bottom.Floor(); vpn < top.Floor(); vpn++ {
		pt.Unmap(vpn)
		src.Dealloc(frames[i])
		i++
	}
}

type kstackError string

func (e kstackError) Error() string { return string(e) }

const errOutOfFrames = kstackError("task: out of frames mapping kernel stack")
