// Package elfload wraps the standard library's debug/elf to read the
// loadable segments and entry point out of an ELF64 app image (§4.5).
// There is no third-party ELF *reader* anywhere in the dependency set —
// the one ELF-adjacent library in the retrieval pack is a writer, used
// for generating test binaries, not parsing them — so this one package
// is the deliberate, justified stdlib exception (recorded in
// DESIGN.md): debug/elf already does exactly what §4.5 needs, and the
// teacher's own boot tooling (chentry) already leans on it for the same
// reason.
package elfload

import (
	"bytes"
	"debug/elf"
	"fmt"
)

/// Segment is one PT_LOAD segment's virtual address, file-backed bytes,
/// total memory size, and permission flags. MemSz can exceed len(Data):
/// the tail up to MemSz is the segment's BSS, zero-filled but unbacked
/// by the file (§4.3).
type Segment struct {
	VAddr uint64
	Data  []byte
	MemSz uint64
	Flags elf.ProgFlag
}

/// Image is a parsed ELF64 application: its loadable segments in file
/// order and its entry point.
type Image struct {
	Segments []Segment
	Entry    uint64
}

/// Load parses raw into an Image. It returns an error rather than
/// panicking on a malformed image, since an app table entry is
/// attacker-adjacent data exec() was asked to run, not a kernel
/// invariant.
func Load(raw []byte) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("elfload: %w", err)
	}
	defer f.Close()
	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("elfload: only ELF64 images are supported")
	}
	var segs []Segment
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, p.Filesz)
		if _, err := p.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("elfload: reading segment at %#x: %w", p.Vaddr, err)
		}
		segs = append(segs, Segment{VAddr: p.Vaddr, Data: data, MemSz: p.Memsz, Flags: p.Flags})
	}
	return &Image{Segments: segs, Entry: f.Entry}, nil
}
