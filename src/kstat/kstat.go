// Package kstat renders the kernel's statistics device (§6, D_STAT /
// D_PROF): a human-readable console dump and a pprof-format profile of
// per-task CPU accounting. The console dump uses
// golang.org/x/text/message the way a locale-aware CLI formats large
// counters for a human reader (thousands separators rather than a bare
// strconv.Itoa); the profile export uses
// github.com/google/pprof/profile, the same library pprof.Parse/Write
// round-trips through, to hand a task's user/sys tick counts to any
// pprof-speaking tool that reads the D_PROF device.
package kstat

import (
	"fmt"
	"io"
	"time"

	"github.com/google/pprof/profile"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

/// TaskSample is one task's accounting snapshot, the unit kstat reports
/// for both the console dump and the profile export.
type TaskSample struct {
	Pid       int
	UserTicks uint64
	SysTicks  uint64
}

/// WriteConsole renders samples as a locale-formatted table to w,
/// serving the D_STAT device (§6).
func WriteConsole(w io.Writer, samples []TaskSample) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%6s %15s %15s\n", "PID", "USER_TICKS", "SYS_TICKS")
	for _, s := range samples {
		p.Fprintf(w, "%6d %15d %15d\n", s.Pid, s.UserTicks, s.SysTicks)
	}
}

/// WriteProfile encodes samples as a pprof profile to w, serving the
/// D_PROF device (§6): one sample per task, two value types (user and
/// system ticks), so any pprof-compatible tool can chart per-task CPU
/// time without the kernel speaking its wire format by hand.
func WriteProfile(w io.Writer, samples []TaskSample, now time.Time) error {
	userType := &profile.ValueType{Type: "user_ticks", Unit: "count"}
	sysType := &profile.ValueType{Type: "sys_ticks", Unit: "count"}

	pidFn := &profile.Function{ID: 1, Name: "task"}
	pidLoc := &profile.Location{ID: 1, Function: []*profile.Function{pidFn}}

	p := &profile.Profile{
		SampleType:    []*profile.ValueType{userType, sysType},
		TimeNanos:     now.UnixNano(),
		Function:      []*profile.Function{pidFn},
		Location:      []*profile.Location{pidLoc},
		DefaultSampleType: "user_ticks",
	}
	for _, s := range samples {
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{pidLoc},
			Value:    []int64{int64(s.UserTicks), int64(s.SysTicks)},
			Label:    map[string][]string{"pid": {fmt.Sprintf("%d", s.Pid)}},
		})
	}
	return p.Write(w)
}
