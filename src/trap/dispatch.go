package trap

import (
	"fmt"
	"io"
	"os"

	"kpanic"
	"trapdiag"
)

/// diagOut is where Dispatch prints a trapdiag.Report line for a fatal
/// user fault; tests redirect it to a buffer.
var diagOut io.Writer = os.Stderr

/// CodeReader lets Dispatch read the bytes at a faulting task's pc out
/// of that task's address space, so trapdiag.Describe can disassemble
/// the instruction that faulted. A caller backs this with the faulting
/// task's address space; tests back it with a fixed buffer.
type CodeReader interface {
	ReadCode(pc uint64, n int) []byte
}

/// Cause identifies why control trapped into the kernel: a synchronous
/// exception or an asynchronous interrupt, per the scause CSR's encoding
/// (top bit set = interrupt).
type Cause int

const (
	ExceptionInstructionPageFault Cause = iota
	ExceptionLoadPageFault
	ExceptionStorePageFault
	ExceptionIllegalInstruction
	ExceptionUserEnvCall
	InterruptSupervisorTimer
	InterruptSupervisorExternal
	Unknown
)

/// String names a Cause the way a trap report line does.
func (c Cause) String() string {
	switch c {
	case ExceptionInstructionPageFault:
		return "instruction page fault"
	case ExceptionLoadPageFault:
		return "load page fault"
	case ExceptionStorePageFault:
		return "store page fault"
	case ExceptionIllegalInstruction:
		return "illegal instruction"
	case ExceptionUserEnvCall:
		return "user ecall"
	case InterruptSupervisorTimer:
		return "supervisor timer interrupt"
	case InterruptSupervisorExternal:
		return "supervisor external interrupt"
	default:
		return "unknown cause"
	}
}

// DecodeScause maps a raw scause CSR value to a Cause (§4.4). The
// encoding follows the RISC-V privileged spec: bit 63 set marks an
// interrupt, and the low bits name the specific exception/interrupt
// code within that class.
func DecodeScause(scause uint64) Cause {
	isInterrupt := scause>>63 != 0
	code := scause &^ (1 << 63)
	if isInterrupt {
		switch code {
		case 5:
			return InterruptSupervisorTimer
		case 9:
			return InterruptSupervisorExternal
		default:
			return Unknown
		}
	}
	switch code {
	case 12:
		return ExceptionInstructionPageFault
	case 13:
		return ExceptionLoadPageFault
	case 15:
		return ExceptionStorePageFault
	case 2:
		return ExceptionIllegalInstruction
	case 8:
		return ExceptionUserEnvCall
	default:
		return Unknown
	}
}

/// Outcome tells Dispatch's caller what to do after a trap has been
/// handled.
type Outcome int

const (
	Continue Outcome = iota // resume the same task
	Reschedule
	Killed
)

/// Syscaller is implemented by src/syscall; trap.Dispatch calls through
/// it rather than importing syscall directly, since syscall itself needs
/// to read/write the very TrapContext this package defines. Dispatch
/// returns the raw value to place in a0: a non-negative result or
/// -errno, already combined the way the syscall ABI expects.
type Syscaller interface {
	Dispatch(tc *TrapContext) int64
}

/// Dispatch handles one trap for a running task's saved context. It
/// returns an Outcome telling the scheduler what to do next, and for
/// ExceptionUserEnvCall advances sepc past the ecall instruction the way
/// every ecall-handling kernel must. code, if non-nil, is used to read
/// the faulting instruction's bytes for a trapdiag report on a fatal
/// user fault (§4.4.1); a nil code skips the report (e.g. a caller that
/// has no address space to read from).
func Dispatch(tc *TrapContext, scause, stval uint64, sc Syscaller, code CodeReader) Outcome {
	cause := DecodeScause(scause)
	switch cause {
	case ExceptionUserEnvCall:
		tc.Sepc += 4
		tc.X[10] = uint64(sc.Dispatch(tc))
		return Continue
	case InterruptSupervisorTimer:
		return Reschedule
	case ExceptionStorePageFault, ExceptionLoadPageFault, ExceptionInstructionPageFault, ExceptionIllegalInstruction:
		if code != nil {
			report := trapdiag.Build(tc.Sepc, cause.String(), stval, code.ReadCode(tc.Sepc, 4))
			fmt.Fprintln(diagOut, report.String())
		}
		return Killed
	default:
		// An scause this kernel has no decoding for is a kernel invariant
		// violation, not a user-observable fault (§5, §7): it means
		// either the hardware raised something the trap table was never
		// built to handle, or trap dispatch itself has a bug. Either way
		// task-kill-and-continue would paper over state nothing upstream
		// can trust anymore.
		kpanic.Fatalf("trap: unrecognized scause %#x (stval=%#x)", scause, stval)
		return Killed
	}
}
