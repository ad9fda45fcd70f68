package elfload

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildMinimalELF64 hand-assembles the smallest valid ELF64 executable
// debug/elf will parse: one PT_LOAD segment carrying payload at vaddr,
// and the given entry point. memsz lets a test ask for a segment whose
// memory image extends past its file-backed bytes (a BSS tail).
func buildMinimalELF64(vaddr, entry uint64, payload []byte, memsz uint64) []byte {
	const ehsize = 64
	const phsize = 56
	buf := new(bytes.Buffer)

	ident := [16]byte{0x7f, 'E', 'L', 'F', 2 /* 64-bit */, 1 /* LE */, 1, 0}
	buf.Write(ident[:])
	binary.Write(buf, binary.LittleEndian, uint16(2))   // e_type = ET_EXEC
	binary.Write(buf, binary.LittleEndian, uint16(243)) // e_machine = EM_RISCV
	binary.Write(buf, binary.LittleEndian, uint32(1))   // e_version
	binary.Write(buf, binary.LittleEndian, entry)       // e_entry
	binary.Write(buf, binary.LittleEndian, uint64(ehsize))
	binary.Write(buf, binary.LittleEndian, uint64(0)) // e_shoff
	binary.Write(buf, binary.LittleEndian, uint32(0)) // e_flags
	binary.Write(buf, binary.LittleEndian, uint16(ehsize))
	binary.Write(buf, binary.LittleEndian, uint16(phsize))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // e_phnum
	binary.Write(buf, binary.LittleEndian, uint16(0)) // e_shentsize
	binary.Write(buf, binary.LittleEndian, uint16(0)) // e_shnum
	binary.Write(buf, binary.LittleEndian, uint16(0)) // e_shstrndx

	off := uint64(ehsize + phsize)
	binary.Write(buf, binary.LittleEndian, uint32(1)) // p_type = PT_LOAD
	binary.Write(buf, binary.LittleEndian, uint32(5)) // p_flags = R|X
	binary.Write(buf, binary.LittleEndian, off)       // p_offset
	binary.Write(buf, binary.LittleEndian, vaddr)     // p_vaddr
	binary.Write(buf, binary.LittleEndian, vaddr)     // p_paddr
	binary.Write(buf, binary.LittleEndian, uint64(len(payload))) // p_filesz
	binary.Write(buf, binary.LittleEndian, memsz)                // p_memsz
	binary.Write(buf, binary.LittleEndian, uint64(0x1000))       // p_align

	buf.Write(payload)
	return buf.Bytes()
}

func TestLoadMinimalImage(t *testing.T) {
	payload := []byte("appcode")
	raw := buildMinimalELF64(0x10000, 0x10000, payload, uint64(len(payload)))

	img, err := Load(raw)
	if err != nil {
		t.Fatal(err)
	}
	if img.Entry != 0x10000 {
		t.Fatalf("entry = %#x, want 0x10000", img.Entry)
	}
	if len(img.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(img.Segments))
	}
	seg := img.Segments[0]
	if seg.VAddr != 0x10000 {
		t.Fatalf("vaddr = %#x", seg.VAddr)
	}
	if !bytes.Equal(seg.Data, payload) {
		t.Fatalf("data = %q, want %q", seg.Data, payload)
	}
	if seg.MemSz != uint64(len(payload)) {
		t.Fatalf("memsz = %d, want %d", seg.MemSz, len(payload))
	}
}

func TestLoadSegmentWithBSSTail(t *testing.T) {
	payload := []byte("appcode")
	const memsz = 4096 // well past len(payload): a .bss tail
	raw := buildMinimalELF64(0x10000, 0x10000, payload, memsz)

	img, err := Load(raw)
	if err != nil {
		t.Fatal(err)
	}
	seg := img.Segments[0]
	if !bytes.Equal(seg.Data, payload) {
		t.Fatalf("data = %q, want %q", seg.Data, payload)
	}
	if seg.MemSz != memsz {
		t.Fatalf("memsz = %d, want %d", seg.MemSz, memsz)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load([]byte("not an elf file")); err == nil {
		t.Fatal("expected error on garbage input")
	}
}
