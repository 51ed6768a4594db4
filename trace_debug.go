//go:build debug

package depot

import "runtime/debug"

// creationTraceAvailable reports whether this build can capture creation
// traces. Debug builds compile the capture in; release builds replace it
// with a constant-false stub so the call sites fold away entirely.
const creationTraceAvailable = true

func captureCreationTrace() []byte {
	return debug.Stack()
}
