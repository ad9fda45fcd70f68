package trap

import (
	"bytes"
	"strings"
	"testing"

	"kpanic"
)

func TestDecodeScause(t *testing.T) {
	cases := []struct {
		raw  uint64
		want Cause
	}{
		{8, ExceptionUserEnvCall},
		{13, ExceptionLoadPageFault},
		{15, ExceptionStorePageFault},
		{12, ExceptionInstructionPageFault},
		{2, ExceptionIllegalInstruction},
		{1<<63 | 5, InterruptSupervisorTimer},
		{1<<63 | 9, InterruptSupervisorExternal},
		{1 << 63, Unknown},
		{99, Unknown},
	}
	for _, c := range cases {
		if got := DecodeScause(c.raw); got != c.want {
			t.Errorf("DecodeScause(%#x) = %v, want %v", c.raw, got, c.want)
		}
	}
}

type fakeSyscaller struct{ ret int64 }

func (f fakeSyscaller) Dispatch(tc *TrapContext) int64 { return f.ret }

func TestDispatchEcallAdvancesSepcAndSetsA0(t *testing.T) {
	tc := &TrapContext{Sepc: 0x1000}
	outcome := Dispatch(tc, 8, 0, fakeSyscaller{ret: -2}, nil)
	if outcome != Continue {
		t.Fatalf("outcome = %v, want Continue", outcome)
	}
	if tc.Sepc != 0x1004 {
		t.Fatalf("sepc = %#x, want 0x1004", tc.Sepc)
	}
	if int64(tc.X[10]) != -2 {
		t.Fatalf("a0 = %d, want -2", int64(tc.X[10]))
	}
}

func TestDispatchTimerReschedules(t *testing.T) {
	tc := &TrapContext{}
	if Dispatch(tc, 1<<63|5, 0, fakeSyscaller{}, nil) != Reschedule {
		t.Fatal("expected timer interrupt to reschedule")
	}
}

func TestDispatchFaultKills(t *testing.T) {
	tc := &TrapContext{}
	if Dispatch(tc, 13, 0, fakeSyscaller{}, nil) != Killed {
		t.Fatal("expected load page fault to kill the task")
	}
}

type fakeCodeReader struct{ code []byte }

func (f fakeCodeReader) ReadCode(pc uint64, n int) []byte { return f.code }

func TestDispatchFaultReportsDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	prevOut := diagOut
	diagOut = &buf
	defer func() { diagOut = prevOut }()

	// encodes "addi a0, zero, 0" (0x00000513), a real decodable
	// riscv64 instruction, so the report names it instead of degrading
	// to a hex dump.
	code := []byte{0x13, 0x05, 0x00, 0x00}
	tc := &TrapContext{Sepc: 0x8000}
	if Dispatch(tc, 13, 0x1234, fakeSyscaller{}, fakeCodeReader{code: code}) != Killed {
		t.Fatal("expected load page fault to kill the task")
	}
	if !strings.Contains(buf.String(), "load page fault") {
		t.Fatalf("report = %q, want it to name the cause", buf.String())
	}
	if !strings.Contains(buf.String(), "0x8000") {
		t.Fatalf("report = %q, want it to name the pc", buf.String())
	}
}

func TestDispatchUnknownCausePanics(t *testing.T) {
	downed := false
	prev := kpanic.SetShutdownHook(func() { downed = true })
	defer kpanic.SetShutdownHook(prev)

	tc := &TrapContext{}
	Dispatch(tc, 99, 0, fakeSyscaller{}, nil)
	if !downed {
		t.Fatal("expected an unrecognized scause to reach kpanic.Fatal")
	}
}
