// Package caller dumps the Go call stack leading to a kernel fatal
// error, adapted from the teacher's caller package. The
// first-call-per-distinct-path deduplication tracker (Distinct_caller_t,
// used there to avoid flooding biscuit's console with the same
// diagnostic path over and over) has no caller in this kernel — every
// fatal error here is, by construction, the last thing the kernel ever
// prints — so only Callerdump survives, trimmed to return its result
// for kpanic to report rather than printing directly.
package caller

import (
	"fmt"
	"runtime"
)

/// Callerdump renders the call stack starting at the given skip depth,
/// one frame per line, outermost frame last.
func Callerdump(skip int) string {
	i := skip
	s := ""
	for {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		i++
		if s == "" {
			s = fmt.Sprintf("%s:%d\n", f, l)
		} else {
			s += fmt.Sprintf("\t<-%s:%d\n", f, l)
		}
	}
	return s
}
