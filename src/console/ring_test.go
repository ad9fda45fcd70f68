package console

import "testing"

func TestRingWriteReadOrder(t *testing.T) {
	r := NewRing(4)
	r.WriteByte('a')
	r.WriteByte('b')
	if got := string(r.Drain()); got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
}

func TestRingOverwritesOldestWhenFull(t *testing.T) {
	r := NewRing(2)
	r.WriteByte('a')
	r.WriteByte('b')
	r.WriteByte('c') // overwrites 'a'
	if got := string(r.Drain()); got != "bc" {
		t.Fatalf("got %q, want %q", got, "bc")
	}
}

func TestRingReadByteEmpty(t *testing.T) {
	r := NewRing(2)
	if _, ok := r.ReadByte(); ok {
		t.Fatal("expected empty ring to report !ok")
	}
}
