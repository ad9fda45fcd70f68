//go:build hostsim

package trap

// SwitchTo under hostsim has no real register file to swap, so it saves
// and restores nothing and returns immediately. It keeps hostsim builds
// linking against the same API as riscv64 builds; src/sched's calls to
// it (in Run, Suspend and Exit) return without switching tasks.
func SwitchTo(from, to *TaskContext) {}
