package addr

import "testing"

func TestFloorCeil(t *testing.T) {
	a := PhysAddr(0x1000)
	if a.Floor() != 1 || a.Ceil() != 1 {
		t.Fatalf("aligned addr: floor=%d ceil=%d", a.Floor(), a.Ceil())
	}
	b := PhysAddr(0x1001)
	if b.Floor() != 1 || b.Ceil() != 2 {
		t.Fatalf("unaligned addr: floor=%d ceil=%d", b.Floor(), b.Ceil())
	}
	if PhysAddr(0).Ceil() != 0 {
		t.Fatalf("zero addr ceil should be zero")
	}
}

func TestIndices(t *testing.T) {
	// vpn = (i2 << 18) | (i1 << 9) | i0
	vpn := VirtPageNum((5 << 18) | (3 << 9) | 7)
	idx := vpn.Indices()
	if idx != [3]uint64{5, 3, 7} {
		t.Fatalf("Indices() = %v, want [5 3 7]", idx)
	}
}

func TestRoundTrip(t *testing.T) {
	pa := PhysAddr(0x80200000)
	ppn := pa.Floor()
	if ppn.PhysAddr() != PhysAddr(0x80200000) {
		t.Fatalf("round trip through PPN lost bits: got %#x", ppn.PhysAddr())
	}
}

func TestAligned(t *testing.T) {
	if !PhysAddr(0x2000).Aligned() {
		t.Fatal("0x2000 should be page aligned")
	}
	if PhysAddr(0x2001).Aligned() {
		t.Fatal("0x2001 should not be page aligned")
	}
}
