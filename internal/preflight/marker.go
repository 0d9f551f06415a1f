package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// MarkerFile records a passing system check inside the state directory.
// While it exists, `supertui watch` skips the startup preflight.
const MarkerFile = ".preflight-passed"

func markerPath(stateDir string) string {
	return filepath.Join(stateDir, MarkerFile)
}

// NeedsCheck reports whether the preflight should run: true until a run
// has passed and recorded the marker.
func NeedsCheck(stateDir string) bool {
	_, err := os.Stat(markerPath(stateDir))
	return errors.Is(err, fs.ErrNotExist)
}

// MarkPassed records a passing check, stamping the marker with the time.
func MarkPassed(stateDir string) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}
	stamp := time.Now().Format(time.RFC3339)
	return os.WriteFile(markerPath(stateDir), []byte(stamp), 0o644)
}

// ClearMarker forces a fresh check on the next run. Removing a marker
// that is already gone is not an error.
func ClearMarker(stateDir string) error {
	err := os.Remove(markerPath(stateDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove marker file: %w", err)
	}
	return nil
}

// MarkerAge returns how long ago the recorded check passed, or zero when
// no valid marker exists.
func MarkerAge(stateDir string) time.Duration {
	content, err := os.ReadFile(markerPath(stateDir))
	if err != nil {
		return 0
	}
	stamp, err := time.Parse(time.RFC3339, string(content))
	if err != nil {
		return 0
	}
	return time.Since(stamp)
}
