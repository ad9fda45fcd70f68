package pgtbl

import (
	"testing"

	"addr"
	"pte"
)

func TestTranslatedStrCrossesPage(t *testing.T) {
	mem := newFakeMem(16)
	al := &fakeAlloc{max: 16}
	pt, _ := New(al, mem)

	// Map two adjacent virtual pages to two adjacent data frames so the
	// string "hi" written at the tail of the first page and continuing
	// into the second exercises the page-crossing path.
	dataVPN0 := addr.VirtPageNum(2)
	dataVPN1 := addr.VirtPageNum(3)
	pt.Map(dataVPN0, 10, pte.R|pte.W)
	pt.Map(dataVPN1, 11, pte.R|pte.W)

	va := addr.VirtAddr(uint64(dataVPN0.VirtAddr()) + addr.PageSize - 1)
	pa0, _ := pt.TranslateVA(va)
	mem.Bytes(pa0, 1)[0] = 'h'
	va2 := addr.VirtAddr(uint64(va) + 1)
	pa1, _ := pt.TranslateVA(va2)
	mem.Bytes(pa1, 1)[0] = 'i'
	va3 := addr.VirtAddr(uint64(va2) + 1)
	pa2, _ := pt.TranslateVA(va3)
	mem.Bytes(pa2, 1)[0] = 0

	s, errno := TranslatedStr(pt, mem, va)
	if errno != 0 {
		t.Fatalf("unexpected error %v", errno)
	}
	if s != "hi" {
		t.Fatalf("got %q, want %q", s, "hi")
	}
}

func TestTranslatedByteBufferUnmapped(t *testing.T) {
	mem := newFakeMem(16)
	al := &fakeAlloc{max: 16}
	pt, _ := New(al, mem)
	_, errno := TranslatedByteBuffer(pt, mem, addr.VirtAddr(0x4000), 8)
	if errno == 0 {
		t.Fatal("expected EFAULT translating an unmapped range")
	}
}
