package easyfs

import "testing"

func TestTotalBlocksDirectOnly(t *testing.T) {
	if got := TotalBlocks(BlockSize * 10); got != 10 {
		t.Fatalf("TotalBlocks = %d, want 10", got)
	}
}

func TestTotalBlocksCrossesIndirect1(t *testing.T) {
	data := uint32(DirectCount + 3)
	got := TotalBlocks(data * BlockSize)
	want := data + 1 // + indirect1 index block
	if got != want {
		t.Fatalf("TotalBlocks = %d, want %d", got, want)
	}
}

func TestTotalBlocksCrossesIndirect2(t *testing.T) {
	data := uint32(indirect1Bound + 5)
	got := TotalBlocks(data * BlockSize)
	// + indirect1 index block + indirect2 index block + one indirect1 child
	want := data + 3
	if got != want {
		t.Fatalf("TotalBlocks = %d, want %d", got, want)
	}
}

func TestBlocksNumNeededMatchesTotalBlocksDelta(t *testing.T) {
	d := &DiskInode{}
	d.Init(TypeFile)
	d.Size = BlockSize * 5

	newSize := uint32(BlockSize * (DirectCount + 2))
	got := d.BlocksNumNeeded(newSize)
	want := TotalBlocks(newSize) - TotalBlocks(d.Size)
	if got != want {
		t.Fatalf("BlocksNumNeeded = %d, want %d", got, want)
	}
}

func TestComputeLayoutPartitionsAllBlocks(t *testing.T) {
	l := ComputeLayout(8192, 128)
	sum := 1 + l.InodeBitmapBlocks + l.InodeAreaBlocks + l.DataBitmapBlocks + l.DataAreaBlocks
	if sum != l.TotalBlocks {
		t.Fatalf("layout blocks sum to %d, want %d", sum, l.TotalBlocks)
	}
	if l.DataBitmapBlocks == 0 || l.DataAreaBlocks == 0 {
		t.Fatalf("expected non-zero data area, got %+v", l)
	}
}

func TestSuperBlockEncodeDecodeRoundTrip(t *testing.T) {
	sb := SuperBlock{Magic: Magic, TotalBlocks: 1000, InodeBitmapBlocks: 1, InodeAreaBlocks: 2, DataBitmapBlocks: 3, DataAreaBlocks: 994}
	got := DecodeSuperBlock(sb.Encode())
	if *got != sb {
		t.Fatalf("decode(encode(sb)) = %+v, want %+v", *got, sb)
	}
}
