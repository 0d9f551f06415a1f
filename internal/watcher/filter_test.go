package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldIgnore_RejectsNoise(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"dotfile", ".gitignore"},
		{"temp extension", "foo.tmp"},
		{"temp substring", "report.tmp.cs"},
		{"editor backup", "bar~"},
		{"solution user options", "project.suo"},
		{"user settings", "App.csproj.user"},
		{"bin segment", "proj/bin/Debug/App.dll"},
		{"obj segment", "proj/obj/Debug/App.cs"},
		{"bin segment windows separators", `proj\bin\Debug\App.dll`},
		{"obj segment mixed separators", `proj/obj\App.cs`},
		{"dotted directory", ".vs/solution/state.cs"},
		{"dotted segment mid-path", "src/.cache/gen.cs"},
		{"backup file in subdir", "src/Form1.cs~"},
		{"temp file in subdir", "src/new.tmp"},
		{"bin as final segment", "src/bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, ShouldIgnore(tt.path), "expected %q to be ignored", tt.path)
		})
	}
}

func TestShouldIgnore_AcceptsSourceFiles(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"plain source file", "main.cs"},
		{"nested source file", "src/views/Dashboard.cs"},
		{"designer file", "src/Form1.Designer.cs"},
		{"bin prefix is not a bin segment", "binary/tool.cs"},
		{"bin suffix is not a bin segment", "cabin/door.cs"},
		{"obj prefix is not an obj segment", "objects/model.cs"},
		{"tmp without dot", "tmp/scratch.cs"},
		{"user as directory name", "user/profile.cs"},
		{"empty path", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, ShouldIgnore(tt.path), "expected %q to be accepted", tt.path)
		})
	}
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		pattern string
		want    bool
	}{
		{"cs file matches cs glob", "Main.cs", "*.cs", true},
		{"go file rejected by cs glob", "main.go", "*.cs", false},
		{"case sensitive", "Main.CS", "*.cs", false},
		{"empty pattern accepts all", "anything.xyz", "", true},
		{"star accepts all", "anything.xyz", "*", true},
		{"question mark", "a.cs", "?.cs", true},
		{"malformed pattern matches nothing", "Main.cs", "[unclosed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPattern(tt.file, tt.pattern))
		})
	}
}
