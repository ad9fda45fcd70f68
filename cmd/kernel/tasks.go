package main

import (
	"fmt"

	"addr"
	"defs"
	"elfload"
	"frame"
	"sched"
	"syscall"
	"task"
	"trap"
	"vmm"
)

// Kernel is every global collaborator cmd/kernel's boot sequence wires
// together, serving the role the teacher's Kernel-wide package-level
// singletons play in proc/mem/vm: one frame allocator, one pid
// allocator, one kernel address space, one ready queue and processor,
// shared across every task this process creates.
type Kernel struct {
	RAM           *RAM
	Frames        *frame.Allocator_t
	Pids          *task.PidAllocator
	KernelSpace   *vmm.MemSet
	TrampolinePPN addr.PhysPageNum
	Ready         *sched.ReadyQueue
	Proc          *sched.Processor
	Apps          interface {
		Lookup(name string) ([]byte, bool)
	}

	// Syscaller is the trap.Syscaller a real trap-entry trampoline would
	// pass to trap.Dispatch on every ecall; this port's run loop drives
	// tasks directly through sched.Processor.Run rather than a hardware
	// trap path, so nothing calls it yet, but it is built here so a
	// riscv64 build's assembly entry point has something concrete to
	// hand trap.Dispatch.
	Syscaller *syscall.Kernel
}

// newTask builds a TCB running img, following the same steps the
// distilled spec gives for building a fresh process from an ELF image
// (§4.5): allocate a pid, a trap-context frame, a kernel stack, a user
// address space from the loadable segments, and a TrapContext primed to
// enter at the image's e_entry.
func (k *Kernel) newTask(img *elfload.Image) (*task.TCB, error) {
	pid := k.Pids.Alloc()

	trapCxPPN, ok := k.Frames.Alloc()
	if !ok {
		return nil, fmt.Errorf("kernel: out of frames allocating trap context for pid %d", pid)
	}

	res, err := vmm.NewUserSpace(k.Frames, k.RAM, k.TrampolinePPN, trapCxPPN, img)
	if err != nil {
		return nil, err
	}

	kBottom, kTop, kFrames, err := task.MapKernelStack(k.KernelSpace.PageTable, k.Frames, pid)
	if err != nil {
		return nil, err
	}

	tc := trap.InitForApp(res.Entry, uint64(res.UserStack), k.KernelSpace.Token(), uint64(kTop), trapHandlerEntry())

	t := &task.TCB{
		Pid:               pid,
		Status:            task.Ready,
		MemSet:            res.MemSet,
		TrapCxPPN:         trapCxPPN,
		TrapCx:            &tc,
		HeapBase:          res.HeapBase,
		KernelStackBottom: kBottom,
		KernelStackTop:    kTop,
		KernelStackFrames: kFrames,
	}
	t.TaskCx = trap.GotoRestore(uint64(kTop), restoreEntry())
	return t, nil
}

// trapHandlerEntry and restoreEntry are the addresses the trampoline's
// __alltraps/__restore code would jump to/from on real hardware; this
// port's trap loop is driven directly from sched.Processor.Run rather
// than by an assembly trampoline dispatching into trap.Dispatch, so
// these are bookkeeping placeholders a real riscv64 build's linker
// script would fill in with __alltraps/__restore's actual addresses.
func trapHandlerEntry() uint64 { return 0 }
func restoreEntry() uint64     { return 0 }

// fork clones parent into a brand-new child TCB (§4.5: fork) and pushes
// it onto the ready queue, matching syscall.ForkFunc's contract.
func (k *Kernel) fork(parent *task.TCB) (int, defs.Err_t) {
	parent.Lock()
	parentMemSet := parent.MemSet
	parent.Unlock()

	trapCxPPN, ok := k.Frames.Alloc()
	if !ok {
		return 0, defs.ENOMEM
	}
	childMemSet, err := vmm.CloneUserSpace(k.Frames, k.RAM, parentMemSet, k.TrampolinePPN, trapCxPPN)
	if err != nil {
		return 0, defs.ENOMEM
	}

	pid := k.Pids.Alloc()
	kBottom, kTop, kFrames, err := task.MapKernelStack(k.KernelSpace.PageTable, k.Frames, pid)
	if err != nil {
		return 0, defs.ENOMEM
	}

	parent.Lock()
	parentTC := *parent.TrapCx
	parent.Unlock()
	parentTC.KernelSP = uint64(kTop)
	childCx := parentTC

	child := &task.TCB{
		Pid:               pid,
		Status:            task.Ready,
		MemSet:            childMemSet,
		TrapCxPPN:         trapCxPPN,
		TrapCx:            &childCx,
		KernelStackBottom: kBottom,
		KernelStackTop:    kTop,
		KernelStackFrames: kFrames,
		Parent:            parent,
	}
	child.TaskCx = trap.GotoRestore(uint64(kTop), restoreEntry())
	child.TrapCx.X[10] = 0 // fork returns 0 in the child (a0)

	parent.Lock()
	parent.Children = append(parent.Children, child)
	parent.Unlock()

	k.Ready.Push(child)
	return pid, 0
}

// exec replaces t's address space in place with the named app image
// (§4.6: exec), following the spec's copy-then-replace semantics:
// build the new space first, and only swap it into the TCB (and
// recompute trap_cx_ppn) once construction has succeeded.
func (k *Kernel) exec(t *task.TCB, path string) defs.Err_t {
	raw, ok := k.Apps.Lookup(path)
	if !ok {
		return defs.ENOENT
	}
	img, err := elfload.Load(raw)
	if err != nil {
		return defs.EINVAL
	}

	t.Lock()
	kernelStackTop := t.KernelStackTop
	t.Unlock()

	trapCxPPN, ok := k.Frames.Alloc()
	if !ok {
		return defs.ENOMEM
	}
	res, err := vmm.NewUserSpace(k.Frames, k.RAM, k.TrampolinePPN, trapCxPPN, img)
	if err != nil {
		return defs.ENOMEM
	}

	tc := trap.InitForApp(res.Entry, uint64(res.UserStack), k.KernelSpace.Token(), uint64(kernelStackTop), trapHandlerEntry())

	t.Lock()
	t.MemSet = res.MemSet
	t.TrapCxPPN = trapCxPPN
	t.TrapCx = &tc
	t.HeapBase = res.HeapBase
	t.Unlock()
	return 0
}
