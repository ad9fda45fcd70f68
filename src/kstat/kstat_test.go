package kstat

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWriteConsoleFormatsCounters(t *testing.T) {
	var buf bytes.Buffer
	WriteConsole(&buf, []TaskSample{{Pid: 1, UserTicks: 1234567, SysTicks: 42}})
	out := buf.String()
	if !strings.Contains(out, "1,234,567") {
		t.Fatalf("expected thousands-separated counter, got %q", out)
	}
	if !strings.Contains(out, "PID") {
		t.Fatalf("expected header row, got %q", out)
	}
}

func TestWriteProfileProducesOutput(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProfile(&buf, []TaskSample{{Pid: 3, UserTicks: 10, SysTicks: 5}}, time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty profile output")
	}
}
