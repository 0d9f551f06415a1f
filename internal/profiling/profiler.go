// Package profiling provides CPU, memory, and trace profiling hooks.
//
// The watch pipeline spends its life on timer and event goroutines; when a
// session misbehaves under an event storm, these hooks capture what the
// runtime was doing without attaching a debugger.
package profiling

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// startProfile opens path for the given collector. The returned stop
// function finishes collection and closes the file.
func startProfile(path, kind string, start func(io.Writer) error, finish func()) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s file: %w", kind, err)
	}
	if err := start(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to start %s: %w", kind, err)
	}
	return func() {
		finish()
		_ = f.Close()
	}, nil
}

// StartCPU starts CPU profiling to the specified file.
// The returned stop function flushes the profile and closes the file.
func StartCPU(path string) (stop func(), err error) {
	return startProfile(path, "CPU profile", pprof.StartCPUProfile, pprof.StopCPUProfile)
}

// StartTrace starts execution tracing to the specified file.
// The returned stop function ends the trace and closes the file.
func StartTrace(path string) (stop func(), err error) {
	return startProfile(path, "trace", trace.Start, trace.Stop)
}

// WriteHeap writes a point-in-time heap snapshot to the specified file.
// The collector runs a GC first so the snapshot reflects live objects.
func WriteHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heap profile file: %w", err)
	}
	defer func() { _ = f.Close() }()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write heap profile: %w", err)
	}
	return nil
}
