package easyfs

import (
	"bytes"
	"path/filepath"
	"testing"

	"blockdev"
	"ustr"
)

func openImage(t *testing.T, totalBlocks uint32) *EasyFileSystem {
	t.Helper()
	dir := t.TempDir()
	dev, err := blockdev.OpenFileDisk(filepath.Join(dir, "fs.img"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dev.Close() })
	efs, err := Format(dev, totalBlocks, 64)
	if err != nil {
		t.Fatal(err)
	}
	return efs
}

func TestFormatRootInodeIsEmptyDirectory(t *testing.T) {
	efs := openImage(t, 8192)
	if !efs.SuperBlock().IsValid() {
		t.Fatal("expected a valid superblock after Format")
	}
	root := NewInode(RootInode, efs)
	if names := root.Ls(); len(names) != 0 {
		t.Fatalf("expected empty root directory, got %v", names)
	}
}

func TestCreateWriteReadRoundTrip(t *testing.T) {
	efs := openImage(t, 8192)
	root := NewInode(RootInode, efs)

	f := root.Create(ustr.MkUstrSlice([]byte("hello.txt")))
	data := bytes.Repeat([]byte("xyz-"), 300) // spans multiple blocks
	if n := f.WriteAt(0, data); n != len(data) {
		t.Fatalf("WriteAt returned %d, want %d", n, len(data))
	}

	got := make([]byte, len(data))
	if n := f.ReadAt(0, got); n != len(data) {
		t.Fatalf("ReadAt returned %d, want %d", n, len(data))
	}
	if !bytes.Equal(got, data) {
		t.Fatal("round-tripped data does not match")
	}

	found := root.Find(ustr.MkUstrSlice([]byte("hello.txt")))
	if found == nil || found.ID() != f.ID() {
		t.Fatal("expected Find to locate the created file")
	}
}

func TestLargeFileUsesIndirectBlocks(t *testing.T) {
	efs := openImage(t, 1<<16)
	root := NewInode(RootInode, efs)
	f := root.Create(ustr.MkUstrSlice([]byte("big")))

	size := uint32((DirectCount + 5) * BlockSize)
	data := bytes.Repeat([]byte{0x42}, int(size))
	f.WriteAt(0, data)

	got := make([]byte, size)
	f.ReadAt(0, got)
	if !bytes.Equal(got, data) {
		t.Fatal("indirect1-spanning file did not round-trip")
	}
}

func TestClearReleasesBlocks(t *testing.T) {
	efs := openImage(t, 8192)
	root := NewInode(RootInode, efs)
	f := root.Create(ustr.MkUstrSlice([]byte("scratch")))
	f.WriteAt(0, bytes.Repeat([]byte{1}, BlockSize*3))

	before := efs.AllocData()
	efs.DeallocData(before)
	f.Clear()

	again := efs.AllocData()
	if again == 0 {
		t.Fatal("expected a reusable data block after Clear")
	}
}

func TestSuperBlockSurvivesRemount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fs.img")
	dev, err := blockdev.OpenFileDisk(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Format(dev, 8192, 64); err != nil {
		t.Fatal(err)
	}
	dev.Close()

	dev2, err := blockdev.OpenFileDisk(path)
	if err != nil {
		t.Fatal(err)
	}
	defer dev2.Close()
	efs2, err := Open(dev2)
	if err != nil {
		t.Fatal(err)
	}
	if efs2.SuperBlock().Magic != Magic {
		t.Fatal("magic did not survive remount")
	}
}
