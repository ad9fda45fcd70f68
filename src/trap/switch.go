//go:build riscv64 && !hostsim

package trap

/// SwitchTo performs a cooperative context switch: it saves the
/// callee-saved registers of the calling task into *from, restores them
/// from *to, and resumes execution at to.RA — the Go declaration
/// paired with the riscv64 __switch implementation in switch_riscv64.s.
/// A hostsim build (switch_hostsim.go) substitutes an empty stand-in
/// that returns immediately, since there is no real register file to
/// swap when running as an ordinary host process.
func SwitchTo(from, to *TaskContext)
