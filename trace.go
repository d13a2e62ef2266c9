package quanta

import (
	"fmt"
	"log"
)

// TraceFunc receives one formatted line per allocator operation when a
// trace hook is installed via Pool.SetTraceHook. It must not call back
// into the Pool: every call happens while the operation that triggered
// it is still executing.
type TraceFunc func(line string)

// SetTraceHook installs (or, passed nil, removes) a debug trace hook.
// Allocate, Release, and Resize report at least one line per call through
// it — the slot offset and chunk counts involved, and the outcome; a
// relocating Resize also reports the lines of the Allocate and release it
// performs — useful
// for diagnosing fragmentation or double-free bugs without attaching a
// debugger. There is no default hook: tracing costs a Sprintf per call,
// so it stays off until a caller opts in, passing NewLogTraceHook if it
// should land on the standard library's log package the way the
// teacher's own SecurityLogger does for its allocator-adjacent
// diagnostics.
func (p *Pool) SetTraceHook(fn TraceFunc) {
	p.traceHook = fn
}

// NewLogTraceHook returns a TraceFunc that writes each line to logger
// (or to the standard library's default logger if logger is nil), the
// same stdlib log.Logger convention the teacher uses for its own
// allocator-adjacent diagnostic logging rather than pulling in a
// third-party structured logger.
func NewLogTraceHook(logger *log.Logger) TraceFunc {
	return func(line string) {
		if logger != nil {
			logger.Print(line)
			return
		}
		log.Print(line)
	}
}

func (p *Pool) trace(format string, args ...any) {
	if p.traceHook == nil {
		return
	}
	p.traceHook(fmt.Sprintf(format, args...))
}
