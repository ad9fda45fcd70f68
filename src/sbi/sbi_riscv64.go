//go:build riscv64 && !hostsim

package sbi

/// Legacy is the Provider backed by the SBI v0.1 legacy extensions
/// (console_putchar, console_getchar, set_timer, shutdown), each a
/// single `ecall` with the extension ID in a7. The actual trap
/// instruction lives in sbi_riscv64.s; these are its bodyless Go
/// declarations, the same split gopher-os uses between a .go
/// declaration and its paired .s implementation for architecture
/// primitives.
type Legacy struct{}

func sbiCall(ext, arg0, arg1, arg2 uintptr) uintptr

func (Legacy) ConsolePutchar(c uint8) {
	sbiCall(sbiConsolePutchar, uintptr(c), 0, 0)
}

func (Legacy) ConsoleGetchar() int {
	return int(int8(sbiCall(sbiConsoleGetchar, 0, 0, 0)))
}

func (Legacy) SetTimer(stimeValue uint64) {
	sbiCall(sbiSetTimer, uintptr(stimeValue), 0, 0)
}

func (Legacy) Shutdown() {
	sbiCall(sbiShutdown, 0, 0, 0)
	for {
	}
}
