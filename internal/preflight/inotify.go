package preflight

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// MinInotifyWatches is the minimum recommended inotify watch budget.
// Recursive watching registers one kernel watch per directory, so a low
// max_user_watches ceiling surfaces as silently missing change events.
const MinInotifyWatches = 8192

// CheckInotifyLimits checks the kernel inotify watch budget on Linux.
// Non-Linux platforms pass trivially.
func (c *Checker) CheckInotifyLimits() CheckResult {
	result := CheckResult{
		Name:     "inotify_limits",
		Required: false,
	}

	if runtime.GOOS != "linux" {
		result.Status = StatusPass
		result.Message = "not applicable on " + runtime.GOOS
		return result
	}

	watches, err := readProcValue("/proc/sys/fs/inotify/max_user_watches")
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot read inotify limits: %v", err)
		return result
	}

	if watches < MinInotifyWatches {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("max_user_watches=%d (recommended: %d)", watches, MinInotifyWatches)
		result.Details = "Run 'sudo sysctl fs.inotify.max_user_watches=524288' to raise the ceiling"
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("max_user_watches=%d", watches)
	return result
}

// readProcValue reads a single integer from a procfs file.
func readProcValue(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	raw := strings.TrimSpace(string(data))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("unexpected value %q in %s", raw, path)
	}
	return v, nil
}
