// Package timer implements the kernel's monotonic clock and the tick
// programming behind get_time and scheduling preemption (§4.6.2). The
// original reference clock reads a fixed-frequency CPU cycle counter
// (CLOCK_FREQ) directly; nothing in this Go port runs close enough to
// the metal to read mtime itself, so the portable path is built on
// time.Now() instead and the riscv64 build tag is free to read the real
// mtime CSR once it exists, without changing this package's API.
package timer

import "time"

// TicksPerSecond matches the reference clock's configured frequency
// (§4.6.2), used only to convert tick counts into the same units the
// original get_time returned.
const TicksPerSecond = 12500000

/// Source is how timer reads the current tick count; swappable for
/// tests that need a deterministic, controllable clock.
type Source interface {
	Now() uint64
}

/// realSource backs Now() with time.Now(), scaled to look like
/// TicksPerSecond-resolution ticks since an arbitrary epoch.
type realSource struct{ epoch time.Time }

func (r realSource) Now() uint64 {
	d := time.Since(r.epoch)
	return uint64(d.Nanoseconds()) / (uint64(time.Second) / TicksPerSecond)
}

var defaultSource Source = realSource{epoch: time.Now()}

/// SetSource overrides the tick source, for tests and for a future
/// riscv64 mtime-backed implementation.
func SetSource(s Source) { defaultSource = s }

/// GetTicks returns the current tick count.
func GetTicks() uint64 { return defaultSource.Now() }

/// GetTimeMs returns the milliseconds elapsed since the kernel started
/// (the default source's epoch is taken at package initialisation), the
/// quantity the get_time syscall (§4.6.2) reports to user space.
func GetTimeMs() uint64 {
	return GetTicks() * 1000 / TicksPerSecond
}

// msPerTick is how often the scheduler asks for a fresh timer interrupt
// (§5): short enough for reasonably fair round-robin, long enough not to
// dominate trap overhead.
const msPerTick = 10

/// NextTrigger returns the tick count at which the next scheduling
/// timer interrupt should fire, msPerTick milliseconds from now.
func NextTrigger() uint64 {
	return GetTicks() + TicksPerSecond/1000*msPerTick
}
