package kpanic

import (
	"bytes"
	"strings"
	"testing"
)

func TestFatalPrintsAndShutsDown(t *testing.T) {
	origOut, origShutdown := out, shutdownFn
	defer func() { out, shutdownFn = origOut, origShutdown }()

	var buf bytes.Buffer
	out = &buf
	downed := false
	shutdownFn = func() { downed = true }

	Fatal("double free of ppn 0x5")

	if !downed {
		t.Fatal("expected Fatal to call the shutdown hook")
	}
	if !strings.Contains(buf.String(), "double free of ppn 0x5") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
}

func TestFatalfFormats(t *testing.T) {
	origOut, origShutdown := out, shutdownFn
	defer func() { out, shutdownFn = origOut, origShutdown }()

	var buf bytes.Buffer
	out = &buf
	shutdownFn = func() {}

	Fatalf("bad pte %#x", 0xdead)
	if !strings.Contains(buf.String(), "bad pte 0xdead") {
		t.Fatalf("expected formatted message, got %q", buf.String())
	}
}
