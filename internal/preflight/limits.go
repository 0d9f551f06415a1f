package preflight

import (
	"fmt"
	"syscall"
)

const (
	// MinDiskSpaceBytes is the free-space floor (100MB) for the filesystem
	// holding the state directory. Rotated logs, template exports, and
	// config backups all land there.
	MinDiskSpaceBytes = 100 * 1024 * 1024

	// MinFileDescriptors is the descriptor-limit floor. Recursive watching
	// holds one descriptor per subscription plus the kernel-side watch
	// registrations.
	MinFileDescriptors = 1024
)

// CheckDiskSpace verifies the filesystem holding path has headroom for
// state writes.
func (c *Checker) CheckDiskSpace(path string) CheckResult {
	var fs syscall.Statfs_t
	if err := syscall.Statfs(path, &fs); err != nil {
		return CheckResult{
			Name:     "disk_space",
			Required: true,
			Status:   StatusFail,
			Message:  fmt.Sprintf("failed to check disk space: %v", err),
		}
	}

	free := fs.Bavail * uint64(fs.Bsize)
	result := CheckResult{
		Name:     "disk_space",
		Required: true,
		Status:   StatusPass,
		Message:  fmt.Sprintf("%s free (minimum: 100 MB)", formatBytes(free)),
	}
	if free < MinDiskSpaceBytes {
		result.Status = StatusFail
	}
	return result
}

// CheckFileDescriptors verifies the process file descriptor limit leaves
// room for the watch pipeline.
func (c *Checker) CheckFileDescriptors() CheckResult {
	var lim syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &lim); err != nil {
		return CheckResult{
			Name:     "file_descriptors",
			Required: true,
			Status:   StatusFail,
			Message:  fmt.Sprintf("failed to check file descriptor limit: %v", err),
		}
	}

	result := CheckResult{
		Name:     "file_descriptors",
		Required: true,
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d (minimum: %d)", lim.Cur, MinFileDescriptors),
	}
	if lim.Cur < MinFileDescriptors {
		result.Status = StatusFail
		result.Details = "Run 'ulimit -n 10240' to increase the limit"
	}
	return result
}

// formatBytes renders a byte count with its largest fitting unit.
func formatBytes(n uint64) string {
	if n < 1024 {
		return fmt.Sprintf("%d bytes", n)
	}

	value := float64(n)
	unit := ""
	for _, u := range []string{"KB", "MB", "GB", "TB"} {
		value /= 1024
		unit = u
		if value < 1024 {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", value, unit)
}
