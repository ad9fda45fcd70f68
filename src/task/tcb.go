// Package task implements the task control block (§3, §4.5): the unit
// the scheduler runs, forks, and waits on. It plays the role the
// teacher's Proc_t plays in proc/ (an empty package in this retrieval —
// biscuit's process bookkeeping lived there) and tinfo's Tnote_t plays
// for per-thread state; unlike tinfo, which hooks a forked Go runtime's
// per-goroutine pointer (runtime.Gptr/Setgptr) to find "the current
// thread", this kernel has no such hook available, so the running task
// is passed explicitly rather than recovered from thread-local state.
package task

import (
	"sync"

	"addr"
	"defs"
	"trap"
	"vmm"
)

/// Status is a task's scheduling state.
type Status int

const (
	Ready Status = iota
	Running
	Zombie
)

/// Accnt_t holds a task's user and sys tick counts, the Go-idiom
/// equivalent of the teacher's accnt package (user/sys time accounting).
/// The D_STAT/D_PROF reports read these fields; no code in this kernel
/// increments them, so they stay zero unless set directly.
type Accnt_t struct {
	UserTicks uint64
	SysTicks  uint64
}

/// TCB is one task's control block.
type TCB struct {
	sync.Mutex

	Pid    int
	Status Status

	MemSet    *vmm.MemSet
	TrapCxPPN addr.PhysPageNum
	TrapCx    *trap.TrapContext
	BaseSize  uint64
	HeapBase  addr.VirtPageNum

	TaskCx trap.TaskContext

	KernelStackBottom addr.VirtAddr
	KernelStackTop    addr.VirtAddr
	KernelStackFrames []addr.PhysPageNum

	Parent   *TCB
	Children []*TCB

	ExitCode int
	Accnt    Accnt_t
}

/// IsZombie reports whether the task has exited but not yet been
/// reaped by waitpid.
func (t *TCB) IsZombie() bool {
	t.Lock()
	defer t.Unlock()
	return t.Status == Zombie
}

/// MarkExited transitions the task to Zombie with the given exit code
/// (§4.6: exit). It changes only Status and ExitCode: the task's children
/// keep it as their parent, since neither MarkExited nor its caller,
/// sched.Processor.Exit, reparents them.
func (t *TCB) MarkExited(code int) {
	t.Lock()
	defer t.Unlock()
	t.Status = Zombie
	t.ExitCode = code
}

/// Err wraps defs.Err_t so task.go's small helpers don't need to import
/// defs directly in every file that touches an error code.
type Err = defs.Err_t
