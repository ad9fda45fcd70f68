//go:build hostsim

package sbi

import (
	"bufio"
	"os"

	"console"
)

// outRingSize bounds how much unflushed output Hostsim will buffer
// before ConsolePutchar starts overwriting the oldest byte; generous
// enough that ordinary boot chatter never hits the limit.
const outRingSize = 4096

/// Hostsim is the Provider used when the kernel (or a package that
/// depends on it) runs as an ordinary host process instead of on real
/// riscv64 hardware — the same role the teacher's host-file-backed
/// ahci_disk_t plays for storage: a portable double standing in for a
/// piece of hardware so the surrounding logic stays testable without it.
/// Output bytes pass through a console.Ring before reaching the real
/// terminal, the same buffered-single-writer/single-reader shape the
/// teacher's per-daemon circbuf gives a UART driver.
type Hostsim struct {
	in  *bufio.Reader
	out *console.Ring
}

/// NewHostsim constructs a Hostsim reading console input from os.Stdin.
func NewHostsim() *Hostsim {
	return &Hostsim{in: bufio.NewReader(os.Stdin), out: console.NewRing(outRingSize)}
}

func (h *Hostsim) ConsolePutchar(c uint8) {
	h.out.WriteByte(c)
	h.Flush()
}

/// Flush drains any output buffered since the last Flush to stdout;
/// Shutdown calls this so nothing written right before power-off is
/// lost sitting in the ring.
func (h *Hostsim) Flush() {
	if b := h.out.Drain(); len(b) > 0 {
		os.Stdout.Write(b)
	}
}

func (h *Hostsim) ConsoleGetchar() int {
	b, err := h.in.ReadByte()
	if err != nil {
		return -1
	}
	return int(b)
}

func (h *Hostsim) SetTimer(stimeValue uint64) {
	// the hostsim build has no real timer interrupt to program; timer.go
	// drives scheduling ticks off time.Now() instead.
}

func (h *Hostsim) Shutdown() {
	h.Flush()
	os.Exit(0)
}
