package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tteejj/supertui/configs"
	"github.com/tteejj/supertui/internal/config"
	"github.com/tteejj/supertui/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user configuration",
		Long: `Manage the user/global configuration file.

User configuration contains machine-specific settings that apply to ALL projects
on this machine, such as:
  - Template and project registry storage paths
  - Toast notification duration and limits
  - Default log level

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/supertui/config.yaml)
  3. Project config (.supertui.yaml)
  4. Environment variables (SUPERTUI_*)`,
		Example: `  # Create user config from template
  supertui config init

  # Show effective configuration (merged from all sources)
  supertui config show

  # Print user config file path
  supertui config path

  # Roll back to the most recent backup
  supertui config restore`,
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(),
		newConfigPathCmd(),
		newConfigRestoreCmd(),
	)
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Create the user/global configuration file from a template.

The configuration file is created at ~/.config/supertui/config.yaml
(or $XDG_CONFIG_HOME/supertui/config.yaml if XDG_CONFIG_HOME is set).

This file contains machine-specific settings like storage paths,
notification behavior, and the default log level.`,
		Example: `  # Create user config
  supertui config init

  # Upgrade existing config with new defaults
  supertui config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the effective configuration after merging all sources.

By default, shows the merged configuration from:
  1. Hardcoded defaults
  2. User config (~/.config/supertui/config.yaml)
  3. Project config (.supertui.yaml)
  4. Environment variables`,
		Example: `  # Show merged configuration
  supertui config show

  # Show as JSON
  supertui config show --json

  # Show only user config
  supertui config show --source user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Long:  `Print the path to the user configuration file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return nil
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [backup-file]",
		Short: "Restore user configuration from a backup",
		Long: `Restore the user configuration file from a backup.

Backups are created automatically by 'config init --force' and by restore
itself, so rolling back is always reversible. Without an argument the most
recent backup is used.`,
		Example: `  # Restore the most recent backup
  supertui config restore

  # Restore a specific backup
  supertui config restore ~/.config/supertui/config.yaml.bak.20260115-093045`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigRestore(cmd, args)
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if force {
			return runConfigUpgrade(out, configPath)
		}
		out.Warning("User configuration already exists")
		out.Statusf("📁", "Location: %s", configPath)
		out.Newline()
		out.Status("💡", "Use --force to upgrade with new defaults (preserves your settings)")
		return nil
	}

	configDir := config.GetUserConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}
	if err := os.WriteFile(configPath, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", configPath)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Edit the file to customize settings")
	out.Status("", "  2. Run 'supertui config show' to verify")
	return nil
}

// runConfigUpgrade backs up the existing file, folds in any defaults the
// user's copy predates, and reports what was added.
func runConfigUpgrade(out *output.Writer, configPath string) error {
	backupPath, err := config.BackupUserConfig()
	if err != nil {
		return fmt.Errorf("failed to backup config: %w", err)
	}

	// Parse the file as written: loading on top of defaults would mask
	// every gap MergeNewDefaults is meant to find.
	existingCfg, err := config.LoadRawUserConfig()
	if err != nil {
		return fmt.Errorf("failed to load existing config: %w", err)
	}
	if existingCfg == nil {
		return fmt.Errorf("config file disappeared during upgrade")
	}

	newFields := existingCfg.MergeNewDefaults()
	if err := existingCfg.WriteYAML(configPath); err != nil {
		return fmt.Errorf("failed to write upgraded config: %w", err)
	}

	out.Success("Configuration upgraded")
	out.Statusf("📁", "Location: %s", configPath)
	out.Statusf("💾", "Backup: %s", backupPath)
	out.Newline()

	if len(newFields) == 0 {
		out.Status("✓", "Your configuration is already up to date")
	} else {
		out.Status("✨", "New options added with defaults:")
		for _, field := range newFields {
			out.Statusf("", "  - %s", field)
		}
	}

	out.Newline()
	out.Status("💡", "Your existing settings have been preserved")
	return nil
}

func runConfigRestore(cmd *cobra.Command, args []string) error {
	out := output.New(cmd.OutOrStdout())

	var backupPath string
	if len(args) == 1 {
		backupPath = args[0]
	} else {
		backups, err := config.ListUserConfigBackups()
		if err != nil {
			return fmt.Errorf("failed to list config backups: %w", err)
		}
		if len(backups) == 0 {
			out.Warning("No config backups found")
			out.Statusf("📁", "Looked next to: %s", config.GetUserConfigPath())
			out.Status("💡", "Backups are created by 'supertui config init --force'")
			return nil
		}
		backupPath = backups[0]
	}

	if err := config.RestoreUserConfig(backupPath); err != nil {
		return fmt.Errorf("failed to restore config: %w", err)
	}

	out.Success("Configuration restored")
	out.Statusf("💾", "From: %s", backupPath)
	out.Statusf("📁", "To: %s", config.GetUserConfigPath())
	return nil
}

// workingProjectRoot resolves the project root for the current directory,
// falling back to the directory itself when no root marker is found.
func workingProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		return cwd, nil
	}
	return root, nil
}

// parseConfigFile reads one YAML config file on top of the hardcoded
// defaults, without merging other sources.
func parseConfigFile(path, kind string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s config: %w", kind, err)
	}
	cfg := config.NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", kind, err)
	}
	return cfg, nil
}

// findProjectConfig returns the project config path, preferring .yaml
// over .yml, or "" when neither exists.
func findProjectConfig(root string) string {
	for _, name := range []string{".supertui.yaml", ".supertui.yml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var (
		cfg        *config.Config
		sourceDesc string
	)

	switch source {
	case "merged":
		root, err := workingProjectRoot()
		if err != nil {
			return err
		}
		cfg, err = config.Load(root)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		sourceDesc = "merged (defaults + user + project + env)"

	case "user":
		configPath := config.GetUserConfigPath()
		if !config.UserConfigExists() {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", configPath)
			out.Status("💡", "Run 'supertui config init' to create one")
			return nil
		}
		var err error
		if cfg, err = parseConfigFile(configPath, "user"); err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("user (%s)", configPath)

	case "project":
		root, err := workingProjectRoot()
		if err != nil {
			return err
		}
		configPath := findProjectConfig(root)
		if configPath == "" {
			out.Warning("No project configuration file found")
			out.Statusf("📁", "Expected at: %s", filepath.Join(root, ".supertui.yaml"))
			out.Status("💡", "Run 'supertui init' to create one")
			return nil
		}
		if cfg, err = parseConfigFile(configPath, "project"); err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("project (%s)", configPath)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return fmt.Errorf("invalid source: %s (use: merged, user, project, defaults)", source)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Newline()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
