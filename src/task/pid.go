package task

import "sync"

/// PidAllocator hands out monotonically increasing pids, the same bump
/// allocator shape as frame.Allocator_t but over the much smaller pid
/// space and with no reuse: a freed pid is never handed out again, so
/// that a stale pid found in, say, a log message never refers to a
/// different, later task.
type PidAllocator struct {
	sync.Mutex
	next int
}

/// NewPidAllocator starts pid allocation at start (cmd/kernel starts at
/// 0, so initproc, the first task its boot sequence builds, is pid 0).
func NewPidAllocator(start int) *PidAllocator {
	return &PidAllocator{next: start}
}

/// Alloc returns the next pid.
func (a *PidAllocator) Alloc() int {
	a.Lock()
	defer a.Unlock()
	p := a.next
	a.next++
	return p
}
