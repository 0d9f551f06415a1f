package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Edge cases around degenerate paths, permission failures and merge corners.

// writeProjectConfig writes a .supertui.yaml into dir.
func writeProjectConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".supertui.yaml"), []byte(content), 0o644))
}

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldDir) })
}

// assertSamePath compares two paths after resolving symlinks, so the macOS
// /var -> /private/var indirection doesn't produce false failures.
func assertSamePath(t *testing.T, want, got string) {
	t.Helper()
	w, _ := filepath.EvalSymlinks(want)
	g, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, w, g)
}

// =============================================================================
// FindProjectRoot Edge Cases
// =============================================================================

func TestFindProjectRoot_NonExistentStart_ReturnsAbsStart(t *testing.T) {
	// filepath.Abs succeeds for paths that don't exist. No marker is ever
	// found, so the absolute start path comes back unchanged.
	start := "/nonexistent/path/that/does/not/exist"

	root, err := FindProjectRoot(start)

	require.NoError(t, err)
	assert.Equal(t, start, root)
}

func TestFindProjectRoot_WalksManyLevels(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755))
	nested := filepath.Join(tmpDir, "a", "b", "c", "d", "e", "f", "g", "h")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	root, err := FindProjectRoot(nested)

	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindProjectRoot_RelativeStart_ResolvesFromCwd(t *testing.T) {
	// Both "." and the empty string mean "start from the working directory".
	for name, start := range map[string]string{"dot": ".", "empty": ""} {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755))
			chdir(t, tmpDir)

			root, err := FindProjectRoot(start)

			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(root), "root should come back absolute")
			assertSamePath(t, tmpDir, root)
		})
	}
}

// =============================================================================
// Merge and Validation Corners
// =============================================================================

func TestLoad_ZeroValuesNotMerged(t *testing.T) {
	// Explicit zeros in the YAML must not clobber defaults. This documents
	// the "can't set to zero" limitation of the non-zero merge.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	writeProjectConfig(t, dir, `
version: 1
workspace:
  cache_size: 0
notifications:
  max_active: 0
focus:
  history: 0
`)

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Workspace.CacheSize)
	assert.Equal(t, 5, cfg.Notifications.MaxActive)
	assert.Equal(t, 256, cfg.Focus.History)
}

func TestLoad_RecursiveFalse_NeedsConfiguredWatchSection(t *testing.T) {
	// yaml.Unmarshal can't tell "recursive: false" from an absent key, so
	// the merge only takes it when roots or pattern prove the watch section
	// was really written out.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configured := t.TempDir()
	writeProjectConfig(t, configured, "watch:\n  roots:\n    - src\n  recursive: false\n")

	cfg, err := Load(configured)
	require.NoError(t, err)
	assert.False(t, cfg.Watch.Recursive)

	unrelated := t.TempDir()
	writeProjectConfig(t, unrelated, "logging:\n  level: warn\n")

	cfg, err = Load(unrelated)
	require.NoError(t, err)
	assert.True(t, cfg.Watch.Recursive, "default recursion should survive unrelated config")
}

func TestLoad_NegativeCacheSize_FailsValidation(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	writeProjectConfig(t, dir, "version: 1\nworkspace:\n  cache_size: -10\n")

	cfg, err := Load(dir)

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "cache_size")
}

func TestLoad_UnreadableConfigFile_ReturnsError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores file permissions")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".supertui.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(configPath, 0o644) })

	cfg, err := Load(dir)

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "read")
}

// =============================================================================
// Environment Variable Corners
// =============================================================================

func TestApplyEnvOverrides_FalsyValues_StayOff(t *testing.T) {
	t.Setenv("SUPERTUI_PLAIN", "0")
	t.Setenv("SUPERTUI_FOCUS_VERBOSE", "no")

	cfg := NewConfig()
	cfg.applyEnvOverrides()

	assert.False(t, cfg.UI.Plain)
	assert.False(t, cfg.Focus.Verbose)
}

func TestApplyEnvOverrides_BadCacheSize_Ignored(t *testing.T) {
	// A broken value must not break startup; the default survives.
	for name, value := range map[string]string{
		"non-numeric": "lots",
		"zero":        "0",
		"negative":    "-4",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv("SUPERTUI_CACHE_SIZE", value)

			cfg := NewConfig()
			cfg.applyEnvOverrides()

			assert.Equal(t, 32, cfg.Workspace.CacheSize)
		})
	}
}

func TestLoad_EnvDebounce_StillValidated(t *testing.T) {
	// An env override cannot smuggle in an invalid debounce.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SUPERTUI_DEBOUNCE", "whenever")

	cfg, err := Load(t.TempDir())

	require.Error(t, err)
	assert.Nil(t, cfg)
}

// =============================================================================
// Project Detection Corners
// =============================================================================

func TestDetectProjectType_DegenerateDirs(t *testing.T) {
	t.Run("empty dir", func(t *testing.T) {
		assert.Equal(t, ProjectTypeUnknown, DetectProjectType(t.TempDir()))
	})

	t.Run("nonexistent dir", func(t *testing.T) {
		assert.Equal(t, ProjectTypeUnknown, DetectProjectType("/nonexistent/path/that/does/not/exist"))
	})

	t.Run("empty marker file still counts", func(t *testing.T) {
		// Presence matters, not content
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "App.csproj"), nil, 0o644))
		assert.Equal(t, ProjectTypeDotnet, DetectProjectType(dir))
	})
}

func TestDiscoverSourceDirs_Degenerate(t *testing.T) {
	t.Run("empty dir", func(t *testing.T) {
		assert.Empty(t, DiscoverSourceDirs(t.TempDir()))
	})

	t.Run("nonexistent dir", func(t *testing.T) {
		assert.Empty(t, DiscoverSourceDirs("/nonexistent/path/that/does/not/exist"))
	})

	t.Run("plain file named like a source dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "src"), []byte("not a dir"), 0o644))
		assert.NotContains(t, DiscoverSourceDirs(dir), "src")
	})
}
