package task

import (
	"testing"

	"addr"
	"pte"
)

func TestPidAllocatorMonotonic(t *testing.T) {
	a := NewPidAllocator(1)
	if p := a.Alloc(); p != 1 {
		t.Fatalf("first pid = %d, want 1", p)
	}
	if p := a.Alloc(); p != 2 {
		t.Fatalf("second pid = %d, want 2", p)
	}
}

type fakePT struct {
	mapped map[addr.VirtPageNum]addr.PhysPageNum
}

func newFakePT() *fakePT { return &fakePT{mapped: map[addr.VirtPageNum]addr.PhysPageNum{}} }

func (f *fakePT) Map(vpn addr.VirtPageNum, ppn addr.PhysPageNum, flags pte.Flag) error {
	f.mapped[vpn] = ppn
	return nil
}

func (f *fakePT) Unmap(vpn addr.VirtPageNum) {
	delete(f.mapped, vpn)
}

type fakeSrc struct {
	next addr.PhysPageNum
	free []addr.PhysPageNum
}

func (s *fakeSrc) Alloc() (addr.PhysPageNum, bool) {
	if n := len(s.free); n > 0 {
		p := s.free[n-1]
		s.free = s.free[:n-1]
		return p, true
	}
	p := s.next
	s.next++
	return p, true
}

func (s *fakeSrc) Dealloc(ppn addr.PhysPageNum) { s.free = append(s.free, ppn) }

func TestMapUnmapKernelStack(t *testing.T) {
	pt := newFakePT()
	src := &fakeSrc{}
	bottom, top, frames, err := MapKernelStack(pt, src, 3)
	if err != nil {
		t.Fatal(err)
	}
	if top <= bottom {
		t.Fatalf("top %#x should be above bottom %#x", top, bottom)
	}
	npages := int(top.Floor() - bottom.Floor())
	if len(frames) != npages {
		t.Fatalf("got %d frames, want %d", len(frames), npages)
	}
	if len(pt.mapped) != npages {
		t.Fatalf("got %d mappings, want %d", len(pt.mapped), npages)
	}
	UnmapKernelStack(pt, src, bottom, top, frames)
	if len(pt.mapped) != 0 {
		t.Fatalf("expected all mappings removed, got %d", len(pt.mapped))
	}
	if len(src.free) != npages {
		t.Fatalf("expected %d frames released, got %d", npages, len(src.free))
	}
}

func TestMarkExitedAndIsZombie(t *testing.T) {
	tc := &TCB{Pid: 7}
	if tc.IsZombie() {
		t.Fatal("fresh task should not be a zombie")
	}
	tc.MarkExited(5)
	if !tc.IsZombie() {
		t.Fatal("expected task to be a zombie after MarkExited")
	}
	if tc.ExitCode != 5 {
		t.Fatalf("exit code = %d, want 5", tc.ExitCode)
	}
}
