// Command kernel is the boot entry point (§5, §6): it wires together
// every collaborator src/* exports — the physical frame allocator, the
// kernel's own identity-mapped address space, the pid allocator, the
// ready queue and processor, the embedded app table, and the syscall
// dispatcher — then builds the first task from the "initproc" image and
// hands control to the scheduler's idle loop, which never returns.
package main

import (
	"fmt"
	"os"

	"addr"
	"apptable"
	"elfload"
	"frame"
	"kpanic"
	"memlayout"
	"sbi"
	"sched"
	"syscall"
	"task"
	"vmm"
)

// initprocName is the app table entry the boot sequence execs first,
// matching the reference kernel's own hardcoded bootstrap process.
const initprocName = "initproc"

func main() {
	sbi.Init(newProvider())

	ram := NewRAM(memlayout.MEMORY_END)

	// Frames below kernelEndPPN hold the kernel image and its static
	// heap (§6); only the remainder of physical memory, up to
	// MEMORY_END, is handed out by the frame allocator.
	kernelEndPPN := addr.PhysAddr(memlayout.KERNEL_HEAP_SIZE).Ceil()
	memEndPPN := addr.PhysAddr(memlayout.MEMORY_END).Floor()
	frames := frame.New(kernelEndPPN, memEndPPN)

	trampolinePPN, ok := frames.Alloc()
	if !ok {
		kpanic.Fatal("kernel: out of frames allocating the trampoline page")
	}

	kernelSpace, err := vmm.NewKernelSpace(frames, ram, kernelEndPPN, memEndPPN, trampolinePPN)
	if err != nil {
		kpanic.Fatalf("kernel: building kernel address space: %v", err)
	}

	apps, err := apptable.NewEmbedded()
	if err != nil {
		kpanic.Fatalf("kernel: loading embedded app table: %v", err)
	}

	ready := &sched.ReadyQueue{}
	proc := sched.NewProcessor(ready)

	k := &Kernel{
		RAM:           ram,
		Frames:        frames,
		Pids:          task.NewPidAllocator(0),
		KernelSpace:   kernelSpace,
		TrampolinePPN: trampolinePPN,
		Ready:         ready,
		Proc:          proc,
		Apps:          apps,
	}
	k.Syscaller = &syscall.Kernel{Proc: k.Proc, Ready: k.Ready, Fork: k.fork, Exec: k.exec}

	raw, ok := apps.Lookup(initprocName)
	if !ok {
		kpanic.Fatalf("kernel: embedded app table has no %q image", initprocName)
	}
	img, err := elfload.Load(raw)
	if err != nil {
		kpanic.Fatalf("kernel: loading %s: %v", initprocName, err)
	}
	initTask, err := k.newTask(img)
	if err != nil {
		kpanic.Fatalf("kernel: building initproc task: %v", err)
	}

	k.Proc.Adopt(initTask)
	fmt.Fprintf(os.Stderr, "kernel: adopted %s as pid %d, entering scheduler\n", initprocName, initTask.Pid)
	k.Proc.Run()
}
