// Package trapdiag decodes the faulting instruction at an exception's
// sepc so a fatal trap report (§7) names the actual opcode instead of
// just its raw bytes. It uses golang.org/x/arch/riscv64/riscv64asm, the
// same disassembler family gopher-os's stack-unwinding/backtrace tooling
// draws on for x86-64; this is that technique's RISC-V counterpart.
package trapdiag

import (
	"fmt"

	"golang.org/x/arch/riscv64/riscv64asm"
)

/// Describe decodes the 2-or-4-byte instruction encoding at code (which
/// must start at the faulting PC) and returns a human-readable
/// disassembly. It never panics: a malformed or truncated encoding
/// degrades to a hex dump rather than taking down the fatal-error path
/// that is trying to report the original fault (§8, property 10).
func Describe(pc uint64, code []byte) string {
	inst, err := riscv64asm.Decode(code)
	if err != nil {
		return fmt.Sprintf("pc=%#x <undecodable: %v, bytes=% x>", pc, err, firstFew(code))
	}
	return fmt.Sprintf("pc=%#x %s", pc, inst.String())
}

func firstFew(b []byte) []byte {
	if len(b) > 4 {
		return b[:4]
	}
	return b
}

/// Report is a fully-decoded fault report (§7): the instruction that
/// faulted plus the trap cause, ready to hand to kpanic.Fatal.
type Report struct {
	PC      uint64
	Cause   string
	Tval    uint64
	Instruction string
}

/// Build assembles a Report for a trap whose sepc is pc, scause names
/// cause, stval is tval, and whose faulting instruction bytes (read from
/// the task's address space by the caller) are code.
func Build(pc uint64, cause string, tval uint64, code []byte) Report {
	return Report{PC: pc, Cause: cause, Tval: tval, Instruction: Describe(pc, code)}
}

/// String renders the report the way a fatal kernel message names a
/// crashing instruction.
func (r Report) String() string {
	return fmt.Sprintf("trap: %s at %s (stval=%#x)", r.Cause, r.Instruction, r.Tval)
}
