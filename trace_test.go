package quanta

import (
	"log"
	"strings"
	"testing"
)

func newTestLogger(w *strings.Builder) *log.Logger {
	return log.New(w, "", 0)
}

func TestTraceHookObservesAllocateReleaseResize(t *testing.T) {
	p := mustInit(t, 16*DefaultChunkSize)
	defer p.Deinit()

	var lines []string
	p.SetTraceHook(func(line string) {
		lines = append(lines, line)
	})

	ptr, err := p.Allocate(DefaultChunkSize)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(lines) == 0 {
		t.Fatal("expected at least one trace line from Allocate, got none")
	}

	before := len(lines)
	if _, err := p.Resize(ptr, 2*DefaultChunkSize); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if len(lines) <= before {
		t.Fatal("expected Resize to emit at least one trace line")
	}

	before = len(lines)
	if err := p.Release(ptr); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if len(lines) <= before {
		t.Fatal("expected Release to emit at least one trace line")
	}
}

func TestTraceHookSilentWhenUnset(t *testing.T) {
	p := mustInit(t, 4*DefaultChunkSize)
	defer p.Deinit()

	ptr, err := p.Allocate(DefaultChunkSize)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := p.Release(ptr); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestTraceHookCanBeCleared(t *testing.T) {
	p := mustInit(t, 4*DefaultChunkSize)
	defer p.Deinit()

	var calls int
	p.SetTraceHook(func(string) { calls++ })
	if _, err := p.Allocate(DefaultChunkSize); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if calls == 0 {
		t.Fatal("expected hook to be called while installed")
	}

	p.SetTraceHook(nil)
	seen := calls
	if _, err := p.Allocate(DefaultChunkSize); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if calls != seen {
		t.Fatalf("expected no further calls after clearing the hook, got %d new calls", calls-seen)
	}
}

func TestNewLogTraceHookWritesToGivenLogger(t *testing.T) {
	var buf strings.Builder
	logger := newTestLogger(&buf)

	hook := NewLogTraceHook(logger)
	hook("allocate offset=0 chunks=1")

	if !strings.Contains(buf.String(), "allocate offset=0 chunks=1") {
		t.Fatalf("expected logger output to contain the traced line, got %q", buf.String())
	}
}
