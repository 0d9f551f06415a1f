package config

import (
	"fmt"
	"path/filepath"
)

// ProjectType represents the type of project detected.
type ProjectType string

const (
	ProjectTypeDotnet  ProjectType = "dotnet"
	ProjectTypeGo      ProjectType = "go"
	ProjectTypeNode    ProjectType = "node"
	ProjectTypePython  ProjectType = "python"
	ProjectTypeUnknown ProjectType = "unknown"
)

// String returns a string representation of ProjectType.
func (p ProjectType) String() string {
	return string(p)
}

// IsKnown returns true if the project type is known (not unknown).
func (p ProjectType) IsKnown() bool {
	return p != ProjectTypeUnknown
}

// DetectProjectType detects the project type based on marker files.
func DetectProjectType(dir string) ProjectType {
	// .NET first: a repo carrying both App.csproj and go.mod is a .NET
	// project with Go tooling, not the other way round
	for _, glob := range []string{"*.csproj", "*.sln"} {
		if matches, _ := filepath.Glob(filepath.Join(dir, glob)); len(matches) > 0 {
			return ProjectTypeDotnet
		}
	}

	markers := []struct {
		file string
		typ  ProjectType
	}{
		{"go.mod", ProjectTypeGo},
		{"package.json", ProjectTypeNode},
		{"pyproject.toml", ProjectTypePython},
		{"requirements.txt", ProjectTypePython},
	}
	for _, m := range markers {
		if fileExists(filepath.Join(dir, m.file)) {
			return m.typ
		}
	}

	return ProjectTypeUnknown
}

// DefaultPatternFor returns the watch pattern that fits a project type.
func DefaultPatternFor(t ProjectType) string {
	switch t {
	case ProjectTypeDotnet:
		return "*.cs"
	case ProjectTypeGo:
		return "*.go"
	case ProjectTypeNode:
		return "*.ts"
	case ProjectTypePython:
		return "*.py"
	default:
		return "*.cs"
	}
}

// FindProjectRoot walks up from startDir looking for a directory that carries
// a root marker (.git or a project config file). When no marker exists
// anywhere up the tree, the absolute form of startDir comes back.
func FindProjectRoot(startDir string) (string, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for dir := start; ; dir = filepath.Dir(dir) {
		if isProjectRoot(dir) {
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			// Hit the filesystem root without finding a marker
			return start, nil
		}
	}
}

// isProjectRoot reports whether dir carries a project root marker.
func isProjectRoot(dir string) bool {
	if dirExists(filepath.Join(dir, ".git")) {
		return true
	}
	return fileExists(filepath.Join(dir, ".supertui.yaml")) ||
		fileExists(filepath.Join(dir, ".supertui.yml"))
}

// DiscoverSourceDirs lists the conventional source directories present under
// dir. Used to suggest watch roots during setup.
func DiscoverSourceDirs(dir string) []string {
	var found []string
	for _, name := range []string{"src", "lib", "pkg", "internal", "cmd", "app"} {
		if dirExists(filepath.Join(dir, name)) {
			found = append(found, name)
		}
	}
	return found
}
