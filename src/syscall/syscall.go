// Package syscall implements the kernel/user ABI (§4.6, §6): decoding a
// trapped ecall's register arguments and dispatching to the handler for
// sys_read, sys_write, sys_exit, sys_yield, sys_get_time, sys_getpid,
// sys_fork, sys_exec, sys_waitpid, and sys_sbrk. It implements
// trap.Syscaller so src/trap's dispatch loop can call into it without
// trap needing to import this package (syscall already needs trap's
// types to read the arguments trap.Dispatch hands it).
package syscall

import (
	"bytes"
	"time"

	"defs"
	"kstat"
	"sbi"
	"sched"
	"task"
	"timer"
	"trap"
)

/// Kernel bundles the collaborators syscall handlers need: the
/// processor that owns the currently running task, and the ready queue
/// fork places new children on.
type Kernel struct {
	Proc  *sched.Processor
	Ready *sched.ReadyQueue
	Fork  ForkFunc
	Exec  ExecFunc
}

/// ForkFunc clones the given parent task into a new child TCB, queues
/// it, and returns the child's pid; it is supplied by cmd/kernel's boot
/// wiring since task construction needs the frame allocator and backing
/// memory that syscall does not otherwise depend on.
type ForkFunc func(parent *task.TCB) (childPid int, err defs.Err_t)

/// ExecFunc replaces the calling task's address space with the named
/// app image, matching sys_exec's copy-then-replace semantics (§4.6).
type ExecFunc func(t *task.TCB, path string) defs.Err_t

/// Dispatch reads a7/a0-a2 out of tc and runs the matching syscall
/// handler, returning the raw a0 value trap.Dispatch will install.
func (k *Kernel) Dispatch(tc *trap.TrapContext) int64 {
	num := tc.X[17] // a7
	a0 := int64(tc.X[10])
	a1 := int64(tc.X[11])
	a2 := int64(tc.X[12])

	t := k.Proc.Current()

	switch num {
	case defs.SYS_WRITE:
		return k.sysWrite(t, a0, a1, a2)
	case defs.SYS_READ:
		return k.sysRead(t, a0, a1, a2)
	case defs.SYS_EXIT:
		k.Proc.Exit(int(a0))
		return 0
	case defs.SYS_YIELD:
		k.Proc.Suspend()
		return 0
	case defs.SYS_GETTIME:
		return int64(timer.GetTimeMs())
	case defs.SYS_GETPID:
		return int64(t.Pid)
	case defs.SYS_FORK:
		return k.sysFork(t)
	case defs.SYS_EXEC:
		return k.sysExec(t, a0)
	case defs.SYS_WAITPID:
		return k.sysWaitpid(t, int(a0), a1)
	case defs.SYS_SBRK:
		return k.sysSbrk(t, int(a0))
	default:
		return int64(-defs.EINVAL)
	}
}

func (k *Kernel) sysWrite(t *task.TCB, fd, bufVA, length int64) int64 {
	if fd != defs.FD_STDOUT {
		return int64(-defs.EBADF)
	}
	buf, errno := readUserBytes(t, uint64(bufVA), int(length))
	if errno != 0 {
		return int64(-errno)
	}
	for _, b := range buf {
		sbi.ConsolePutchar(b)
	}
	return length
}

func (k *Kernel) sysRead(t *task.TCB, fd, bufVA, length int64) int64 {
	switch fd {
	case int64(defs.FD_STDIN):
		return k.sysReadConsole(t, bufVA, length)
	case int64(defs.D_STAT):
		return k.sysReadStat(t, bufVA, length, false)
	case int64(defs.D_PROF):
		return k.sysReadStat(t, bufVA, length, true)
	default:
		return int64(-defs.EBADF)
	}
}

func (k *Kernel) sysReadConsole(t *task.TCB, bufVA, length int64) int64 {
	if length <= 0 {
		return 0
	}
	c := sbi.ConsoleGetchar()
	if c < 0 {
		k.Proc.Suspend()
		return 0
	}
	if errno := writeUserByte(t, uint64(bufVA), byte(c)); errno != 0 {
		return int64(-errno)
	}
	return 1
}

// sysReadStat renders the current task's and every ready task's CPU
// accounting into the caller's buffer, serving the D_STAT (human-
// readable) and D_PROF (pprof-format) devices (§6, §4.4.1 addendum).
// The report is truncated to length rather than spread across repeated
// reads: there is no seek/offset state kept per fd in this design.
func (k *Kernel) sysReadStat(t *task.TCB, bufVA, length int64, asProfile bool) int64 {
	if length <= 0 {
		return 0
	}
	samples := k.statSamples(t)
	var buf bytes.Buffer
	if asProfile {
		if err := kstat.WriteProfile(&buf, samples, time.Now()); err != nil {
			return int64(-defs.EINVAL)
		}
	} else {
		kstat.WriteConsole(&buf, samples)
	}
	data := buf.Bytes()
	if int64(len(data)) > length {
		data = data[:length]
	}
	n, errno := writeUserBytes(t, uint64(bufVA), data)
	if errno != 0 {
		return int64(-errno)
	}
	return int64(n)
}

// statSamples gathers an accounting snapshot for the currently running
// task plus every task still waiting on the ready queue. Zombies and
// tasks blocked elsewhere are not visible to the ready queue and are
// omitted, matching this device's "live scheduler state" scope.
func (k *Kernel) statSamples(current *task.TCB) []kstat.TaskSample {
	tasks := append([]*task.TCB{current}, k.Ready.Snapshot()...)
	samples := make([]kstat.TaskSample, 0, len(tasks))
	for _, tt := range tasks {
		tt.Lock()
		samples = append(samples, kstat.TaskSample{Pid: tt.Pid, UserTicks: tt.Accnt.UserTicks, SysTicks: tt.Accnt.SysTicks})
		tt.Unlock()
	}
	return samples
}

func (k *Kernel) sysFork(t *task.TCB) int64 {
	if k.Fork == nil {
		return int64(-defs.EINVAL)
	}
	childPid, errno := k.Fork(t)
	if errno != 0 {
		return int64(-errno)
	}
	return int64(childPid)
}

func (k *Kernel) sysExec(t *task.TCB, pathVA int64) int64 {
	if k.Exec == nil {
		return int64(-defs.EINVAL)
	}
	path, errno := readUserStr(t, uint64(pathVA))
	if errno != 0 {
		return int64(-errno)
	}
	// exec reports any failure of the image swap, including an unknown
	// app name, as -1.
	if errno := k.Exec(t, path); errno != 0 {
		return -1
	}
	return 0
}

func (k *Kernel) sysWaitpid(t *task.TCB, targetPid int, statusVA int64) int64 {
	t.Lock()
	children := t.Children
	t.Unlock()
	if len(children) == 0 {
		return int64(defs.NoChildrenRunning)
	}
	for _, c := range children {
		if targetPid != -1 && c.Pid != targetPid {
			continue
		}
		if c.IsZombie() {
			c.Lock()
			code := c.ExitCode
			pid := c.Pid
			c.Unlock()
			t.Lock()
			for i, cc := range t.Children {
				if cc == c {
					t.Children = append(t.Children[:i], t.Children[i+1:]...)
					break
				}
			}
			t.Unlock()
			if statusVA != 0 {
				writeUserI32(t, uint64(statusVA), int32(code))
			}
			return int64(pid)
		}
	}
	return int64(defs.ChildrenRunning)
}

func (k *Kernel) sysSbrk(t *task.TCB, delta int) int64 {
	old, errno := t.MemSet.GrowHeap(t.HeapBase, delta)
	if errno != 0 {
		return int64(-errno)
	}
	return int64(old)
}
