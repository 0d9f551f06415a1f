package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tteejj/supertui/internal/config"
)

func TestConfigCmd_PathFollowsXDG(t *testing.T) {
	// Given: an explicit XDG_CONFIG_HOME
	home := sandboxHome(t)

	// When: printing the config path
	output, err := runCLI(t, "config", "path")

	// Then: the path sits under the XDG directory
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "supertui", "config.yaml"), strings.TrimSpace(output))
}

func TestConfigCmd_InitCreatesUserConfig(t *testing.T) {
	// Given: no user config
	sandboxHome(t)

	// When: running config init
	output, err := runCLI(t, "config", "init")

	// Then: the template is written
	require.NoError(t, err)
	assert.Contains(t, output, "Created user configuration")

	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1")
	assert.Contains(t, string(data), "templates_path")
}

func TestConfigCmd_InitTwiceWarns(t *testing.T) {
	// Given: an existing user config
	sandboxHome(t)
	_, err := runCLI(t, "config", "init")
	require.NoError(t, err)

	// When: running config init again
	output, err := runCLI(t, "config", "init")

	// Then: it refuses without --force
	require.NoError(t, err)
	assert.Contains(t, output, "already exists")
}

func TestConfigCmd_InitForceUpgrades(t *testing.T) {
	// Given: a minimal user config missing most fields
	sandboxHome(t)
	configPath := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	minimal := "version: 1\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(configPath, []byte(minimal), 0o644))

	// When: upgrading with --force
	output, err := runCLI(t, "config", "init", "--force")

	// Then: new defaults are merged and a backup is kept
	require.NoError(t, err)
	assert.Contains(t, output, "Configuration upgraded")
	assert.Contains(t, output, "watch.pattern")

	backups, err := filepath.Glob(configPath + ".bak.*")
	require.NoError(t, err)
	assert.NotEmpty(t, backups, "Should keep a timestamped backup")

	// And: the user's own setting survived the merge
	upgraded, err := config.LoadUserConfig()
	require.NoError(t, err)
	require.NotNil(t, upgraded)
	assert.Equal(t, "debug", upgraded.Logging.Level)
	assert.Equal(t, "*.cs", upgraded.Watch.Pattern)

	// And: fields the minimal file never set keep their defaults in the
	// rewritten file, not the zero value of a raw parse
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recursive: true")
	assert.Contains(t, string(data), "version: 1")
}

func TestConfigCmd_InitForceOnCompleteConfig_ReportsUpToDate(t *testing.T) {
	// Given: a config that already carries every field
	sandboxHome(t)
	configPath := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, config.NewConfig().WriteYAML(configPath))

	// When: upgrading with --force
	output, err := runCLI(t, "config", "init", "--force")

	// Then: nothing to add
	require.NoError(t, err)
	assert.Contains(t, output, "already up to date")
	assert.NotContains(t, output, "New options added")
}

func TestConfigCmd_ShowDefaults(t *testing.T) {
	sandboxHome(t)

	output, err := runCLI(t, "config", "show", "--source", "defaults")

	require.NoError(t, err)
	assert.Contains(t, output, "defaults (hardcoded)")
	assert.Contains(t, output, "*.cs")
	assert.Contains(t, output, "500ms")
}

func TestConfigCmd_ShowDefaultsJSON(t *testing.T) {
	sandboxHome(t)

	output, err := runCLI(t, "config", "show", "--source", "defaults", "--json")

	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(output), &cfg))
	assert.Equal(t, "*.cs", cfg.Watch.Pattern)
	assert.Equal(t, 5, cfg.Notifications.MaxActive)
}

func TestConfigCmd_ShowMergedAppliesProjectOverrides(t *testing.T) {
	// Given: a project config overriding the pattern
	sandboxHome(t)
	projectDir := t.TempDir()
	projectCfg := "version: 1\nwatch:\n  pattern: \"*.go\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".supertui.yaml"), []byte(projectCfg), 0o644))
	chdir(t, projectDir)

	// When: showing the merged config
	output, err := runCLI(t, "config", "show", "--json")

	// Then: the project override wins over the default
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(output), &cfg))
	assert.Equal(t, "*.go", cfg.Watch.Pattern)
	assert.Equal(t, "500ms", cfg.Watch.Debounce, "unset fields keep defaults")
}

func TestConfigCmd_ShowUserMissingWarns(t *testing.T) {
	sandboxHome(t)

	output, err := runCLI(t, "config", "show", "--source", "user")

	require.NoError(t, err)
	assert.Contains(t, output, "No user configuration file found")
	assert.Contains(t, output, "config init")
}

func TestConfigCmd_ShowProjectMissingWarns(t *testing.T) {
	sandboxHome(t)
	chdir(t, t.TempDir())

	output, err := runCLI(t, "config", "show", "--source", "project")

	require.NoError(t, err)
	assert.Contains(t, output, "No project configuration file found")
}

func TestConfigCmd_ShowInvalidSourceFails(t *testing.T) {
	sandboxHome(t)

	_, err := runCLI(t, "config", "show", "--source", "bogus")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid source")
}

func TestConfigCmd_RestoreNoBackupsWarns(t *testing.T) {
	// Given: no backups next to the user config
	sandboxHome(t)

	// When: restoring without an argument
	output, err := runCLI(t, "config", "restore")

	// Then: it explains instead of failing
	require.NoError(t, err)
	assert.Contains(t, output, "No config backups found")
}

func TestConfigCmd_RestoreLatestBackup(t *testing.T) {
	// Given: a current config and an older backup with different content
	sandboxHome(t)
	configPath := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))

	backupContent := "version: 1\nwatch:\n  pattern: \"*.go\"\n"
	backupPath := configPath + ".bak.20260101-100000"
	require.NoError(t, os.WriteFile(backupPath, []byte(backupContent), 0o644))
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1\n"), 0o644))

	// When: restoring without an argument
	output, err := runCLI(t, "config", "restore")

	// Then: the backup content replaces the current config
	require.NoError(t, err)
	assert.Contains(t, output, "Configuration restored")
	assert.Contains(t, output, backupPath)

	restored, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, backupContent, string(restored))
}

func TestConfigCmd_RestoreExplicitFile(t *testing.T) {
	// Given: a saved config file outside the backup rotation
	sandboxHome(t)
	saved := filepath.Join(t.TempDir(), "saved-config.yaml")
	content := "version: 1\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(saved, []byte(content), 0o644))

	// When: restoring from the explicit path
	output, err := runCLI(t, "config", "restore", saved)

	// Then: it becomes the user config
	require.NoError(t, err)
	assert.Contains(t, output, "Configuration restored")

	restored, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, content, string(restored))
}
