// Package preflight provides system validation and pre-flight checks
// to ensure SuperTUI can run successfully before starting operations.
//
// The package validates:
//   - State and template directories exist and are writable
//   - Configuration parses and validates
//   - Configured watch roots exist
//   - Disk space availability (minimum 100MB)
//   - File descriptor limits (minimum 1024)
//   - Kernel inotify watch budget on Linux
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, "/path/to/project")
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
