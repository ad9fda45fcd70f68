package syscall

import (
	"addr"
	"defs"
	"pgtbl"
	"task"
)

func readUserBytes(t *task.TCB, va uint64, n int) ([]byte, defs.Err_t) {
	chunks, errno := pgtbl.TranslatedByteBuffer(t.MemSet.PageTable, t.MemSet.Backing(), addr.VirtAddr(va), n)
	if errno != 0 {
		return nil, errno
	}
	if len(chunks) == 1 {
		return chunks[0], 0
	}
	out := make([]byte, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, 0
}

func writeUserByte(t *task.TCB, va uint64, b byte) defs.Err_t {
	dst, errno := pgtbl.TranslatedRefMut(t.MemSet.PageTable, t.MemSet.Backing(), addr.VirtAddr(va), 1)
	if errno != 0 {
		return errno
	}
	dst[0] = b
	return 0
}

func writeUserI32(t *task.TCB, va uint64, v int32) defs.Err_t {
	dst, errno := pgtbl.TranslatedRefMut(t.MemSet.PageTable, t.MemSet.Backing(), addr.VirtAddr(va), 4)
	if errno != 0 {
		return errno
	}
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
	return 0
}

func readUserStr(t *task.TCB, va uint64) (string, defs.Err_t) {
	return pgtbl.TranslatedStr(t.MemSet.PageTable, t.MemSet.Backing(), addr.VirtAddr(va))
}

// writeUserBytes copies data into the user buffer at va, crossing page
// boundaries the same way readUserBytes does, and returns how many
// bytes were written.
func writeUserBytes(t *task.TCB, va uint64, data []byte) (int, defs.Err_t) {
	chunks, errno := pgtbl.TranslatedByteBuffer(t.MemSet.PageTable, t.MemSet.Backing(), addr.VirtAddr(va), len(data))
	if errno != 0 {
		return 0, errno
	}
	n := 0
	for _, c := range chunks {
		n += copy(c, data[n:])
	}
	return n, 0
}
