package defs

/// Syscall numbers, per §6 of the specification plus the sbrk addition.
const (
	SYS_READ    = 63
	SYS_WRITE   = 64
	SYS_EXIT    = 93
	SYS_YIELD   = 124
	SYS_SBRK    = 214
	SYS_GETTIME = 169
	SYS_GETPID  = 172
	SYS_FORK    = 220
	SYS_EXEC    = 221
	SYS_WAITPID = 260
)

/// Well-known file descriptors. No other descriptor kinds are supported:
/// there is no fd table, since disk-backed descriptors mounted into a task
/// are out of scope.
const (
	FD_STDIN  = 0
	FD_STDOUT = 1
)
