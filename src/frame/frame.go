// Package frame implements the physical frame allocator (§4.1): a bump
// pointer over [startPPN, endPPN) backed by a LIFO free list, serialized
// by a single lock. This plays the role of the teacher's Physmem_t
// (mem/mem.go) stripped of its per-CPU free-list sharding — sharding
// exists there to avoid cross-CPU lock contention, which this single-hart
// kernel (§5, Non-goals: no multi-hart execution) has no use for; one
// shared free list is the whole story here.
package frame

import (
	"fmt"
	"sync"

	"addr"
)

/// Frame_i is the interface the rest of the kernel allocates through,
/// mirroring the teacher's Page_i abstraction (mem/mem.go) trimmed to the
/// operations this kernel needs: no refcounting, since Non-goals exclude
/// copy-on-write sharing of user pages.
type Frame_i interface {
	Alloc() (addr.PhysPageNum, bool)
	Dealloc(addr.PhysPageNum)
}

/// Allocator_t is the bump+freelist physical frame allocator.
type Allocator_t struct {
	sync.Mutex
	start     addr.PhysPageNum
	current   addr.PhysPageNum
	end       addr.PhysPageNum
	free      []addr.PhysPageNum
	allocated int
}

/// New constructs an allocator over the half-open frame range
/// [start, end).
func New(start, end addr.PhysPageNum) *Allocator_t {
	return &Allocator_t{start: start, current: start, end: end}
}

/// Alloc hands out one frame, preferring the free list (§4.1: "alloc
/// prefers the free list") before the bump pointer. It reports "exhausted"
/// by returning ok=false.
func (a *Allocator_t) Alloc() (addr.PhysPageNum, bool) {
	a.Lock()
	defer a.Unlock()
	if n := len(a.free); n > 0 {
		ppn := a.free[n-1]
		a.free = a.free[:n-1]
		a.allocated++
		return ppn, true
	}
	if a.current >= a.end {
		return 0, false
	}
	ppn := a.current
	a.current++
	a.allocated++
	return ppn, true
}

/// Dealloc returns a frame to the allocator. Double-free (a frame not
/// currently allocated from this pool) is a kernel invariant violation
/// and panics, matching the teacher's "XXXPANIC" style assertions on
/// refcount underflow in mem/mem.go.
func (a *Allocator_t) Dealloc(ppn addr.PhysPageNum) {
	a.Lock()
	defer a.Unlock()
	if ppn >= a.current {
		panic(fmt.Sprintf("frame: dealloc of never-allocated ppn %#x", ppn))
	}
	for _, f := range a.free {
		if f == ppn {
			panic(fmt.Sprintf("frame: double free of ppn %#x", ppn))
		}
	}
	a.free = append(a.free, ppn)
	a.allocated--
}

/// Counts reports the number of frames currently allocated and the
/// number of distinct frames this allocator could ever hand out, for
/// internal/kstat and property 5's round-trip check.
func (a *Allocator_t) Counts() (allocated, total int) {
	a.Lock()
	defer a.Unlock()
	return a.allocated, int(a.end - a.start)
}

/// FrameGuard owns one physical frame and returns it to alloc when
/// dropped via Release; it is the Go stand-in for the teacher's
/// "ownership token" frame described in §3 (Rust's Drop has no direct Go
/// analogue, so release is explicit rather than implicit-on-scope-exit).
type FrameGuard struct {
	PPN   addr.PhysPageNum
	alloc Frame_i
}

/// TrackFrame wraps an already-allocated ppn in a guard for a.
func TrackFrame(ppn addr.PhysPageNum, a Frame_i) *FrameGuard {
	return &FrameGuard{PPN: ppn, alloc: a}
}

/// Release returns the frame to its allocator. Calling Release twice is
/// a double free and will panic inside Dealloc.
func (g *FrameGuard) Release() {
	g.alloc.Dealloc(g.PPN)
}
