package vmm

import (
	"testing"

	"addr"
	"memlayout"
	"pte"
)

type fakeAlloc struct {
	next addr.PhysPageNum
	max  addr.PhysPageNum
	free []addr.PhysPageNum
}

func (a *fakeAlloc) Alloc() (addr.PhysPageNum, bool) {
	if n := len(a.free); n > 0 {
		p := a.free[n-1]
		a.free = a.free[:n-1]
		return p, true
	}
	if a.next >= a.max {
		return 0, false
	}
	p := a.next
	a.next++
	return p, true
}

func (a *fakeAlloc) Dealloc(ppn addr.PhysPageNum) { a.free = append(a.free, ppn) }

type fakeMem struct {
	frames [][512]pte.PTE
	bytes  []byte
}

func newFakeMem(frames int) *fakeMem {
	return &fakeMem{frames: make([][512]pte.PTE, frames), bytes: make([]byte, frames*addr.PageSize)}
}

func (m *fakeMem) ReadPTEs(ppn addr.PhysPageNum) *[512]pte.PTE { return &m.frames[int(ppn)] }
func (m *fakeMem) Bytes(pa addr.PhysAddr, n int) []byte {
	off := int(pa)
	return m.bytes[off : off+n]
}

func TestPushAreaFramedAndCopyIn(t *testing.T) {
	mem := newFakeMem(32)
	al := &fakeAlloc{max: 32}
	ms, err := New(al, mem)
	if err != nil {
		t.Fatal(err)
	}
	area := NewArea(addr.VirtAddr(0x1000), addr.VirtAddr(0x1000+10), Framed, pte.R|pte.W|pte.U)
	data := []byte("helloworld")
	if err := ms.PushArea(area, data); err != nil {
		t.Fatal(err)
	}
	pa, ok := ms.PageTable.TranslateVA(addr.VirtAddr(0x1000))
	if !ok {
		t.Fatal("expected mapping to exist")
	}
	got := mem.Bytes(pa, 10)
	if string(got) != "helloworld" {
		t.Fatalf("got %q", got)
	}
}

func TestGrowHeap(t *testing.T) {
	mem := newFakeMem(32)
	al := &fakeAlloc{max: 32}
	ms, _ := New(al, mem)
	heapBase := addr.VirtPageNum(5)
	ms.areas = append(ms.areas, &MapArea{StartVPN: heapBase, EndVPN: heapBase, Kind: Framed, Perm: pte.R | pte.W | pte.U})

	oldBrk, errno := ms.GrowHeap(heapBase, addr.PageSize)
	if errno != 0 {
		t.Fatalf("grow: %v", errno)
	}
	if oldBrk != heapBase.VirtAddr() {
		t.Fatalf("old break = %#x, want %#x", oldBrk, heapBase.VirtAddr())
	}
	if _, ok := ms.PageTable.Translate(heapBase); !ok {
		t.Fatal("expected heap page to be mapped after growth")
	}

	if _, errno := ms.GrowHeap(heapBase, -addr.PageSize); errno != 0 {
		t.Fatalf("shrink: %v", errno)
	}
	if _, ok := ms.PageTable.Translate(heapBase); ok {
		t.Fatal("expected heap page to be unmapped after shrink")
	}
}

func TestCloneUserSpaceCopiesData(t *testing.T) {
	mem := newFakeMem(64)
	al := &fakeAlloc{max: 64}
	parent, _ := New(al, mem)
	area := NewArea(addr.VirtAddr(0x2000), addr.VirtAddr(0x2000+4), Framed, pte.R|pte.W|pte.U)
	parent.PushArea(area, []byte("fork"))

	trampolinePPN, _ := al.Alloc()
	trapCxPPN, _ := al.Alloc()
	trampolineVPN := addr.VirtAddr(memlayout.TRAMPOLINE).Floor()
	trapCxVPN := addr.VirtAddr(memlayout.TRAP_CONTEXT).Floor()
	if err := parent.PageTable.Map(trampolineVPN, trampolinePPN, pte.R|pte.X); err != nil {
		t.Fatal(err)
	}
	if err := parent.PageTable.Map(trapCxVPN, trapCxPPN, pte.R|pte.W); err != nil {
		t.Fatal(err)
	}

	child, err := CloneUserSpace(al, mem, parent, trampolinePPN, trapCxPPN)
	if err != nil {
		t.Fatal(err)
	}
	childPA, ok := child.PageTable.TranslateVA(addr.VirtAddr(0x2000))
	if !ok {
		t.Fatal("expected child mapping")
	}
	parentPA, _ := parent.PageTable.TranslateVA(addr.VirtAddr(0x2000))
	if childPA == parentPA {
		t.Fatal("expected child to own a distinct physical frame (no COW)")
	}
	if string(mem.Bytes(childPA, 4)) != "fork" {
		t.Fatalf("child data not copied: %q", mem.Bytes(childPA, 4))
	}

	if _, ok := child.PageTable.Translate(trampolineVPN); !ok {
		t.Fatal("expected trampoline mapping to survive cloning")
	}
	if _, ok := child.PageTable.Translate(trapCxVPN); !ok {
		t.Fatal("expected trap-context mapping to survive cloning")
	}
}
