package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tteejj/supertui/internal/config"
)

func TestInitCmd_DetectsGoProject(t *testing.T) {
	// Given: a directory with a go.mod
	sandboxHome(t)
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "go.mod"), []byte("module example.com/demo\n"), 0o644))
	chdir(t, projectDir)

	// When: running init
	output, err := runCLI(t, "init")

	// Then: the project type and pattern are detected
	require.NoError(t, err)
	assert.Contains(t, output, "Detected go project")
	assert.Contains(t, output, "*.go")
	assert.Contains(t, output, "Initialization complete!")

	// And: the generated file carries the detected pattern
	data, err := os.ReadFile(filepath.Join(projectDir, ".supertui.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "*.go")
	assert.Contains(t, string(data), "Generated for a go project")
}

func TestInitCmd_DiscoversSourceDirs(t *testing.T) {
	// Given: a Go project with conventional source directories
	sandboxHome(t)
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "go.mod"), []byte("module example.com/demo\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(projectDir, "internal"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(projectDir, "cmd"), 0o755))
	chdir(t, projectDir)

	// When: running init
	output, err := runCLI(t, "init")

	// Then: the discovered directories become watch roots
	require.NoError(t, err)
	assert.Contains(t, output, "Watch roots: internal, cmd")

	data, err := os.ReadFile(filepath.Join(projectDir, ".supertui.yaml"))
	require.NoError(t, err)

	var pc projectConfig
	require.NoError(t, yaml.Unmarshal(data, &pc))
	assert.Equal(t, 1, pc.Version)
	assert.Equal(t, []string{"internal", "cmd"}, pc.Watch.Roots)
	assert.Equal(t, "*.go", pc.Watch.Pattern)
	assert.True(t, pc.Watch.Recursive)
}

func TestInitCmd_UnknownTypeWritesTemplate(t *testing.T) {
	// Given: a directory with no project markers
	sandboxHome(t)
	projectDir := t.TempDir()
	chdir(t, projectDir)

	// When: running init
	output, err := runCLI(t, "init")

	// Then: the commented template is written instead of guessed values
	require.NoError(t, err)
	assert.Contains(t, output, "not detected")

	data, err := os.ReadFile(filepath.Join(projectDir, ".supertui.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Uncomment only what you change")
}

func TestInitCmd_ExistingConfigWarns(t *testing.T) {
	// Given: an already-initialized project
	sandboxHome(t)
	projectDir := t.TempDir()
	existing := []byte("version: 1\nwatch:\n  pattern: \"*.fs\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".supertui.yaml"), existing, 0o644))
	chdir(t, projectDir)

	// When: running init without --force
	output, err := runCLI(t, "init")

	// Then: the existing file is preserved
	require.NoError(t, err)
	assert.Contains(t, output, "already initialized")

	data, err := os.ReadFile(filepath.Join(projectDir, ".supertui.yaml"))
	require.NoError(t, err)
	assert.Equal(t, existing, data)
}

func TestInitCmd_ForceRegenerates(t *testing.T) {
	// Given: an already-initialized Go project
	sandboxHome(t)
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "go.mod"), []byte("module example.com/demo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".supertui.yaml"), []byte("version: 1\n"), 0o644))
	chdir(t, projectDir)

	// When: running init --force
	output, err := runCLI(t, "init", "--force")

	// Then: the file is regenerated from detection
	require.NoError(t, err)
	assert.Contains(t, output, "Detected go project")

	data, err := os.ReadFile(filepath.Join(projectDir, ".supertui.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "*.go")
}

func TestInitCmd_HintsAtUserConfig(t *testing.T) {
	// Given: no user config exists
	sandboxHome(t)
	chdir(t, t.TempDir())

	// When: running init
	output, err := runCLI(t, "init")

	// Then: it points at config init
	require.NoError(t, err)
	assert.Contains(t, output, "supertui config init")
}

func TestRenderProjectConfig_RoundTrips(t *testing.T) {
	// When: rendering a detected configuration
	data, err := renderProjectConfig(config.ProjectTypeDotnet, "*.cs", []string{"src", "tests"})

	// Then: the YAML parses back with the same values
	require.NoError(t, err)

	var pc projectConfig
	require.NoError(t, yaml.Unmarshal(data, &pc))
	assert.Equal(t, 1, pc.Version)
	assert.Equal(t, "*.cs", pc.Watch.Pattern)
	assert.Equal(t, []string{"src", "tests"}, pc.Watch.Roots)
	assert.Equal(t, "500ms", pc.Watch.Debounce)
}
