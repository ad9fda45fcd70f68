// Package trap implements the trap gateway (§3, §4.4): the fixed
// per-task TrapContext register-save area at TRAP_CONTEXT, the
// TaskContext callee-saved registers __switch swaps between tasks, and
// the supervisor-trap dispatch table. The trampoline's entry/exit code
// is not part of this package (this tree ships no trampoline assembly);
// this file holds the portable layout and dispatch logic every build tag
// shares.
package trap

/// TrapContext is the fixed-layout register save area every task's
/// trap handler reads and writes, mapped at the per-space TRAP_CONTEXT
/// virtual address (§3). Field order is the layout a trampoline's save/
/// restore sequence addresses by fixed offset, so reordering fields
/// changes those offsets; no assembly in this tree reads it.
type TrapContext struct {
	X            [32]uint64 // general-purpose registers x0-x31
	Sstatus      uint64
	Sepc         uint64
	KernelSatp   uint64
	KernelSP     uint64
	TrapHandler  uint64
}

/// SetSP sets the saved stack pointer (x2) in the context, used when
/// building a brand-new task's initial context before its first run.
func (tc *TrapContext) SetSP(sp uint64) { tc.X[2] = sp }

/// InitForApp builds the TrapContext a freshly exec'd task starts
/// execution with: pc = entry, sp = user stack top, and the bookkeeping
/// fields the trampoline needs to get back into the kernel on the first
/// trap.
func InitForApp(entry, userSP, kernelSatp, kernelSP, trapHandler uint64) TrapContext {
	var tc TrapContext
	tc.Sepc = entry
	tc.SetSP(userSP)
	tc.KernelSatp = kernelSatp
	tc.KernelSP = kernelSP
	tc.TrapHandler = trapHandler
	// sstatus.SPP = 0 (user mode) is the zero value; nothing else to set.
	return tc
}

/// TaskContext holds the callee-saved registers __switch preserves
/// across a cooperative task switch (§4.4): ra and s0-s11, plus the
/// stack pointer the switch resumes onto.
type TaskContext struct {
	RA uint64
	SP uint64
	S  [12]uint64
}

/// GotoRestore builds the TaskContext used to bootstrap a brand-new
/// task: __switch "returns" into __restore at kernelSP, which then
/// pops the TrapContext and sret's into user mode for the first time.
func GotoRestore(kernelSP, restoreEntry uint64) TaskContext {
	return TaskContext{RA: restoreEntry, SP: kernelSP}
}
