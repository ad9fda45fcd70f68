package util

import "testing"

func TestRoundupRounddown(t *testing.T) {
	cases := []struct{ v, b, up, down int }{
		{0, 4096, 0, 0},
		{1, 4096, 4096, 0},
		{4096, 4096, 4096, 4096},
		{4097, 4096, 8192, 4096},
	}
	for _, c := range cases {
		if got := Roundup(c.v, c.b); got != c.up {
			t.Errorf("Roundup(%d,%d) = %d, want %d", c.v, c.b, got, c.up)
		}
		if got := Rounddown(c.v, c.b); got != c.down {
			t.Errorf("Rounddown(%d,%d) = %d, want %d", c.v, c.b, got, c.down)
		}
	}
}

func TestReadnWriten(t *testing.T) {
	buf := make([]uint8, 16)
	Writen(buf, 4, 4, 0xdeadbeef)
	if got := Readn(buf, 4, 4); got != int(uint32(0xdeadbeef)) {
		t.Errorf("Readn = %#x, want %#x", got, uint32(0xdeadbeef))
	}
}

func TestTrailingOnes(t *testing.T) {
	cases := []struct {
		w    uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{0b11, 2},
		{^uint64(0), 64},
		{0b101, 1},
	}
	for _, c := range cases {
		if got := TrailingOnes(c.w); got != c.want {
			t.Errorf("TrailingOnes(%#x) = %d, want %d", c.w, got, c.want)
		}
	}
}

func TestMin(t *testing.T) {
	if Min(3, 5) != 3 {
		t.Fatal("Min wrong")
	}
	if Min(uint32(9), uint32(2)) != 2 {
		t.Fatal("Min wrong for uint32")
	}
}
