package blockdev

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestFileDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenFileDisk(filepath.Join(dir, "img"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	want := bytes.Repeat([]byte{0xab}, BlockSize)
	d.WriteBlock(3, want)

	got := make([]byte, BlockSize)
	d.ReadBlock(3, got)
	if !bytes.Equal(got, want) {
		t.Fatalf("ReadBlock(3) = %x, want %x", got, want)
	}
}

func TestFileDiskWrongSizePanics(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenFileDisk(filepath.Join(dir, "img"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on undersized buffer")
		}
	}()
	d.WriteBlock(0, make([]byte, 10))
}
