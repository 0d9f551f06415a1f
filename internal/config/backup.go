package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// MaxBackups is how many config backups are kept; older ones are pruned.
	MaxBackups = 3

	// BackupSuffix separates the config name from the backup timestamp.
	BackupSuffix = ".bak"
)

// backupTimeFormat stamps backup names, e.g. config.yaml.bak.20260115-093045.
const backupTimeFormat = "20060102-150405"

// BackupUserConfig copies the user config aside before `config init --force`
// rewrites it. Returns the backup path, or "" when there is no config to
// back up. Backups beyond MaxBackups are pruned best-effort.
func BackupUserConfig() (string, error) {
	if !UserConfigExists() {
		return "", nil
	}

	configPath := GetUserConfigPath()
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}

	stamp := time.Now().Format(backupTimeFormat)
	backupPath := fmt.Sprintf("%s%s.%s", configPath, BackupSuffix, stamp)
	// The stamp has one-second granularity; scripted back-to-back backups
	// land in the same second, so count up until the name is free.
	for n := 1; fileExists(backupPath); n++ {
		backupPath = fmt.Sprintf("%s%s.%s-%d", configPath, BackupSuffix, stamp, n)
	}
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	pruneBackups()
	return backupPath, nil
}

// ListUserConfigBackups returns the user config's backup files, newest first.
func ListUserConfigBackups() ([]string, error) {
	configPath := GetUserConfigPath()

	matches, err := filepath.Glob(configPath + BackupSuffix + ".*")
	if err != nil {
		return nil, fmt.Errorf("failed to list config backups: %w", err)
	}

	modified := make(map[string]time.Time, len(matches))
	paths := matches[:0]
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		modified[m] = info.ModTime()
		paths = append(paths, m)
	}
	sort.Slice(paths, func(i, j int) bool {
		return modified[paths[i]].After(modified[paths[j]])
	})
	return paths, nil
}

// pruneBackups removes backups beyond MaxBackups, keeping the newest.
// Failures are ignored: the backup that matters was already written.
func pruneBackups() {
	backups, err := ListUserConfigBackups()
	if err != nil || len(backups) <= MaxBackups {
		return
	}
	for _, old := range backups[MaxBackups:] {
		_ = os.Remove(old)
	}
}

// RestoreUserConfig replaces the user config with the contents of a backup
// file. The current config, if present, is backed up first so a restore is
// itself reversible.
func RestoreUserConfig(backupPath string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	if UserConfigExists() {
		if _, err := BackupUserConfig(); err != nil {
			return fmt.Errorf("failed to back up current config before restore: %w", err)
		}
	}

	if err := os.MkdirAll(GetUserConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(GetUserConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write restored config: %w", err)
	}
	return nil
}
