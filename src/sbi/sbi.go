// Package sbi is the kernel's interface to the Supervisor Binary
// Interface: console I/O, the timer, and machine shutdown, every one of
// which is ultimately one `ecall` down to M-mode firmware. This plays
// the role the teacher's runtime glue plays for the BIOS/UEFI calls
// gopher-os and biscuit both wrap in small arch-specific packages — the
// portable logic (trap.go, sched.go, kstat.go, ...) calls through the
// Provider interface below, and only this package's riscv64-tagged file
// touches a real CSR or `ecall`.
package sbi

/// Provider is the SBI surface the rest of the kernel depends on. A
/// riscv64 build satisfies it with the legacy SBI `ecall` extensions
/// (§6); a hostsim build satisfies it against an in-process console and
/// clock for development and testing off real hardware.
type Provider interface {
	/// ConsolePutchar writes one byte to the console.
	ConsolePutchar(c uint8)
	/// ConsoleGetchar reads one byte from the console, or -1 if none is
	/// pending.
	ConsoleGetchar() int
	/// SetTimer programs the next supervisor timer interrupt to fire at
	/// the given absolute mtime value.
	SetTimer(stimeValue uint64)
	/// Shutdown powers the machine off. It never returns.
	Shutdown()
}

// legacy SBI extension IDs (§6), used by the riscv64 Provider.
const (
	sbiConsolePutchar = 1
	sbiConsoleGetchar = 2
	sbiSetTimer       = 0
	sbiShutdown       = 8
)

var current Provider

/// Init installs p as the provider every other kernel package calls
/// through. It is called once from cmd/kernel's boot sequence, after
/// deciding (by build tag) which concrete Provider to construct.
func Init(p Provider) { current = p }

/// ConsolePutchar writes one byte to the console via the installed
/// Provider.
func ConsolePutchar(c uint8) { current.ConsolePutchar(c) }

/// ConsoleGetchar polls for one console byte; -1 means none is pending.
func ConsoleGetchar() int { return current.ConsoleGetchar() }

/// SetTimer programs the next timer interrupt.
func SetTimer(stimeValue uint64) { current.SetTimer(stimeValue) }

/// Shutdown powers the machine off.
func Shutdown() { current.Shutdown() }
