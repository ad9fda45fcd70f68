package frame

import "testing"

func TestAllocDeallocRoundTrip(t *testing.T) {
	a := New(10, 13)
	p1, ok := a.Alloc()
	if !ok || p1 != 10 {
		t.Fatalf("first alloc = %d, %v", p1, ok)
	}
	p2, ok := a.Alloc()
	if !ok || p2 != 11 {
		t.Fatalf("second alloc = %d, %v", p2, ok)
	}
	a.Dealloc(p1)
	p3, ok := a.Alloc()
	if !ok || p3 != p1 {
		t.Fatalf("freelist reuse: got %d, want %d", p3, p1)
	}
}

func TestAllocExhausted(t *testing.T) {
	a := New(0, 2)
	if _, ok := a.Alloc(); !ok {
		t.Fatal("expected first alloc to succeed")
	}
	if _, ok := a.Alloc(); !ok {
		t.Fatal("expected second alloc to succeed")
	}
	if _, ok := a.Alloc(); ok {
		t.Fatal("expected pool to be exhausted")
	}
}

func TestDeallocDoubleFreePanics(t *testing.T) {
	a := New(0, 4)
	p, _ := a.Alloc()
	a.Dealloc(p)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double free")
		}
	}()
	a.Dealloc(p)
}

func TestDeallocNeverAllocatedPanics(t *testing.T) {
	a := New(0, 4)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on dealloc of never-allocated ppn")
		}
	}()
	a.Dealloc(3)
}

func TestFrameGuardRelease(t *testing.T) {
	a := New(0, 4)
	p, _ := a.Alloc()
	g := TrackFrame(p, a)
	before, _ := a.Counts()
	g.Release()
	after, _ := a.Counts()
	if after != before-1 {
		t.Fatalf("release did not return frame: before=%d after=%d", before, after)
	}
}
