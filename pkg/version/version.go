// Package version exposes the binary's build identity.
package version

import (
	"fmt"
	"runtime"
)

// Stamped by the linker on release builds:
//
//	-X github.com/tteejj/supertui/pkg/version.Version=1.2.3
//
// Plain `go build` binaries report dev/unknown.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is the version block rendered by `supertui version --json`.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetInfo combines the stamped identity with the running binary's
// toolchain and platform.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String renders the one-line form printed by `supertui version`.
func String() string {
	return fmt.Sprintf("supertui %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, runtime.Version())
}

// Short returns the bare version number.
func Short() string {
	return Version
}
