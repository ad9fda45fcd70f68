package defs

/// Err_t is a negative-errno-style return code. It is the wire type for the
/// kernel/user ABI boundary: syscalls place -Err_t directly into a0, so the
/// type must encode onto a single machine register rather than Go's error
/// interface.
type Err_t int

/// Err_t values used by the address-translation and syscall layers.
const (
	EFAULT       Err_t = 14
	EINVAL       Err_t = 22
	ENOMEM       Err_t = 12
	ENOHEAP      Err_t = 100
	ENAMETOOLONG Err_t = 36
	EBADF        Err_t = 9
	ESRCH        Err_t = 3
	ENOENT       Err_t = 2
)

/// waitpid sentinel returns (§4.6); these are not Err_t because waitpid's
/// return value shares the slot with a successful child pid, which is
/// always non-negative.
const (
	NoChildrenRunning = -1
	ChildrenRunning   = -2
)

/// Tid_t identifies a single schedulable task (there are no kernel threads
/// distinct from tasks in this design, so Tid_t and Pid_t share a domain).
type Tid_t int
