package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tteejj/supertui/configs"
	"github.com/tteejj/supertui/internal/config"
	"github.com/tteejj/supertui/internal/output"
	"github.com/tteejj/supertui/pkg/version"
)

// projectConfig is the subset of Config that belongs in a project's
// .supertui.yaml. Machine-specific sections (workspace paths, logging)
// live in the user config instead.
type projectConfig struct {
	Version int                `yaml:"version"`
	Watch   config.WatchConfig `yaml:"watch"`
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize SuperTUI for a project",
		Long: `Initialize SuperTUI for the current project.

This command:
1. Detects the project type (.NET, Go, Node, Python)
2. Discovers source directories to watch
3. Generates a .supertui.yaml with the detected settings

The generated file is optional - SuperTUI works with sensible defaults.`,
		Example: `  # Initialize in current project
  supertui init

  # Overwrite an existing .supertui.yaml
  supertui init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	out.Statusf("🚀", "SuperTUI %s - Initializing...", version.Version)
	out.Newline()

	root, err := workingProjectRoot()
	if err != nil {
		return err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	out.Statusf("📁", "Project: %s", absRoot)

	if !force {
		if existing := findProjectConfig(absRoot); existing != "" {
			out.Newline()
			out.Warningf("Project already initialized (%s exists)", filepath.Base(existing))
			out.Status("💡", "Use --force to regenerate")
			return nil
		}
	}

	// Detect project type and source layout
	out.Newline()
	projectType := config.DetectProjectType(absRoot)
	sourceDirs := config.DiscoverSourceDirs(absRoot)

	var content []byte
	if projectType.IsKnown() {
		out.Statusf("🔍", "Detected %s project", projectType)

		pattern := config.DefaultPatternFor(projectType)
		out.Statusf("👀", "Watch pattern: %s", pattern)

		if len(sourceDirs) > 0 {
			out.Statusf("📂", "Watch roots: %s", strings.Join(sourceDirs, ", "))
		} else {
			out.Status("📂", "No source directories found, watching project root")
		}

		content, err = renderProjectConfig(projectType, pattern, sourceDirs)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
	} else {
		// Nothing to detect: hand the user the commented template instead
		// of guessing defaults that are probably wrong.
		out.Status("🔍", "Project type not detected, writing commented template")
		content = []byte(configs.ProjectConfigTemplate)
	}

	yamlPath := filepath.Join(absRoot, ".supertui.yaml")
	if err := os.WriteFile(yamlPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write .supertui.yaml: %w", err)
	}
	out.Statusf("📝", "Created %s", yamlPath)

	// Final instructions
	out.Newline()
	out.Success("Initialization complete!")
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Review .supertui.yaml and adjust watch roots")
	out.Status("", "  2. Run 'supertui watch' to start the change pipeline")
	out.Status("", "  3. Run 'supertui doctor' to verify setup")

	// Hint about user config for machine-specific settings
	if !config.UserConfigExists() {
		out.Newline()
		out.Status("💡", "For machine-specific settings (storage paths, toasts):")
		out.Status("", "   Run 'supertui config init' to create user config")
	}

	return nil
}

// renderProjectConfig marshals the detected watch settings with a short
// explanatory header.
func renderProjectConfig(projectType config.ProjectType, pattern string, roots []string) ([]byte, error) {
	defaults := config.NewConfig()

	pc := projectConfig{
		Version: defaults.Version,
		Watch: config.WatchConfig{
			Roots:     roots,
			Pattern:   pattern,
			Debounce:  defaults.Watch.Debounce,
			MaxWindow: defaults.Watch.MaxWindow,
			Recursive: defaults.Watch.Recursive,
		},
	}
	if pc.Watch.Roots == nil {
		pc.Watch.Roots = []string{}
	}

	body, err := yaml.Marshal(pc)
	if err != nil {
		return nil, err
	}

	header := fmt.Sprintf(`# SuperTUI project configuration.
# Generated for a %s project - edit freely and commit alongside the code.
# Settings here override the user config (~/.config/supertui/config.yaml).

`, projectType)

	return append([]byte(header), body...), nil
}
