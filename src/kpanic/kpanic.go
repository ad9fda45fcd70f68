// Package kpanic is the kernel's single fatal-error chokepoint (§7):
// every unrecoverable invariant violation — a double free, a remap of
// an already-mapped page, a malformed trap this kernel has no handler
// for — funnels through Fatal, which prints the error, the call stack
// that found it, and powers the machine off via sbi.Shutdown rather
// than leaving a wedged machine spinning.
package kpanic

import (
	"fmt"
	"io"
	"os"

	"caller"
	"sbi"
)

/// shutdownFn is swapped out in tests so Fatal's message can be checked
/// without actually calling sbi.Shutdown (which never returns on real
/// hardware and os.Exit(0)s under hostsim).
var shutdownFn = sbi.Shutdown

/// out is where Fatal prints; tests redirect it to a buffer.
var out io.Writer = os.Stderr

/// Fatal prints msg and the current call stack, then shuts the machine
/// down. Like the teacher's XXXPANIC-style invariant violations, this
/// is for conditions that mean kernel state is no longer trustworthy —
/// not for recoverable, caller-facing errors, which return a defs.Err_t
/// instead.
func Fatal(msg string) {
	fmt.Fprintf(out, "kernel panic: %s\n%s", msg, caller.Callerdump(2))
	shutdownFn()
}

/// Fatalf formats its arguments like fmt.Sprintf and reports them via
/// Fatal.
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Sprintf(format, args...))
}

/// SetShutdownHook overrides the hook Fatal/Fatalf call after reporting
/// a message, returning the previous hook so a caller can restore it.
/// Packages whose own tests exercise a code path that ends in
/// kpanic.Fatal (e.g. src/trap's unknown-scause case) need this to keep
/// the test process itself from exiting via the default sbi.Shutdown.
func SetShutdownHook(fn func()) (previous func()) {
	previous = shutdownFn
	shutdownFn = fn
	return previous
}
