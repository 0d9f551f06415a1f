package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the log directory, ~/.supertui/logs. When the
// home directory cannot be resolved the same layout is placed under the
// system temp directory instead.
func DefaultLogDir() string {
	base, err := os.UserHomeDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, ".supertui", "logs")
}

// DefaultLogPath returns the application log file inside DefaultLogDir.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "supertui.log")
}

// FindLogFile resolves which log file to view. An explicit path wins and
// must exist; otherwise the default location is used if it exists.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if !fileExists(explicit) {
			return "", fmt.Errorf("log file not found: %s", explicit)
		}
		return explicit, nil
	}

	path := DefaultLogPath()
	if !fileExists(path) {
		return "", fmt.Errorf("no log file found. Run with --debug to generate logs.\nExpected at: %s", path)
	}
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
