package pgtbl

import (
	"addr"
	"defs"
)

/// ByteAccess gives read/write access to raw physical bytes, the
/// counterpart to PhysMem for data pages rather than page-table frames.
// A real kernel backs this with identity-mapped physical RAM; tests back
// it with a plain byte slice.
type ByteAccess interface {
	Bytes(pa addr.PhysAddr, n int) []byte
}

/// TranslatedByteBuffer splits a user-space [va, va+len) range into the
/// (possibly several) contiguous physical byte slices backing it,
/// crossing page boundaries as needed. This is the Go shape of the
/// specification's translated_byte_buffer: it lets a syscall handler
/// read/write a user buffer without copying through a temporary.
func TranslatedByteBuffer(pt *PageTable_t, mem ByteAccess, va addr.VirtAddr, length int) ([][]byte, defs.Err_t) {
	if length == 0 {
		return nil, 0
	}
	var out [][]byte
	start := va
	end := addr.VirtAddr(uint64(va) + uint64(length))
	for start < end {
		pa, ok := pt.TranslateVA(start)
		if !ok {
			return nil, defs.EFAULT
		}
		vpnEnd := start.Floor().VirtAddr() + addr.PageSize
		chunkEnd := end
		if addr.VirtAddr(vpnEnd) < end {
			chunkEnd = addr.VirtAddr(vpnEnd)
		}
		n := int(uint64(chunkEnd) - uint64(start))
		out = append(out, mem.Bytes(pa, n))
		start = chunkEnd
	}
	return out, 0
}

/// TranslatedStr reads a NUL-terminated string out of user memory
/// starting at va, one byte at a time (mirroring the reference
/// translated_str, which cannot assume the string doesn't straddle
/// pages or run off the end of mapped memory).
func TranslatedStr(pt *PageTable_t, mem ByteAccess, va addr.VirtAddr) (string, defs.Err_t) {
	var out []byte
	cur := va
	for {
		pa, ok := pt.TranslateVA(cur)
		if !ok {
			return "", defs.EFAULT
		}
		b := mem.Bytes(pa, 1)[0]
		if b == 0 {
			break
		}
		out = append(out, b)
		cur = addr.VirtAddr(uint64(cur) + 1)
		if len(out) > 4096 {
			return "", defs.ENAMETOOLONG
		}
	}
	return string(out), 0
}

/// TranslatedRefMut resolves a single user-space pointer-sized slot to
/// its backing bytes, for syscalls like get_time/waitpid that write one
/// struct back into user memory.
func TranslatedRefMut(pt *PageTable_t, mem ByteAccess, va addr.VirtAddr, size int) ([]byte, defs.Err_t) {
	pa, ok := pt.TranslateVA(va)
	if !ok {
		return nil, defs.EFAULT
	}
	return mem.Bytes(pa, size), 0
}
