// Package memlayout is the kernel's "configuration" — the board memory
// map, expressed as compile-time constants the way every repo in the
// retrieval pack configures its target board (gopher-os's
// mem/constants_amd64.go, biscuit's per-arch constant blocks). There is
// no runtime configuration surface for a kernel image, so unlike a
// hosted service this has no flag/env parsing: the memory map is fixed
// at build time for the target board.
package memlayout

import "addr"

const (
	/// USER_STACK_SIZE and KERNEL_STACK_SIZE (§6): 8 KiB each.
	USER_STACK_SIZE   = 8192
	KERNEL_STACK_SIZE = 8192

	/// GUARD_PAGE separates adjacent kernel stacks so an overflow faults
	/// instead of corrupting the neighboring task's stack.
	GUARD_PAGE = addr.PageSize

	/// KERNEL_HEAP_SIZE (§6): 3 MiB of kernel dynamic-allocation space.
	KERNEL_HEAP_SIZE = 3 * 1024 * 1024

	/// MEMORY_END (§6): physical ceiling of the board's RAM.
	MEMORY_END = 0x80800000

	/// TRAMPOLINE (§6): usize::MAX - 4095, the top page of the address
	/// space, identically mapped in every address space.
	TRAMPOLINE = ^uint64(0) - 4095

	/// TRAP_CONTEXT (§3): one page below the trampoline.
	TRAP_CONTEXT = TRAMPOLINE - addr.PageSize
)

/// KernelStackPosition returns the [bottom, top) virtual address range of
/// the kernel stack belonging to the task with the given pid, per §3:
/// "top is TRAMPOLINE − pid · (KERNEL_STACK_SIZE + GUARD_PAGE)".
func KernelStackPosition(pid int) (bottom, top uint64) {
	top = TRAMPOLINE - uint64(pid)*(KERNEL_STACK_SIZE+GUARD_PAGE)
	bottom = top - KERNEL_STACK_SIZE
	return
}
