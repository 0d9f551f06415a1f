package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tteejj/supertui/internal/project"
	"github.com/tteejj/supertui/internal/ui"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage the project registry",
		Long: `Track the projects you work in and find them by fuzzy name search.

The registry is a single JSON file (~/.supertui/projects.json by
default). Search ranks projects with Sublime-style fuzzy matching over
names and nicknames.

Examples:
  # List registered projects, most recently opened first
  supertui projects

  # Register a project with a short alias
  supertui projects add supertui ~/code/supertui --nickname st

  # Find it later
  supertui projects search sprt

  # Jump to it from the shell
  cd "$(supertui projects open st 2>/dev/null || supertui projects open supertui)"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProjectsList(cmd, false)
		},
	}

	cmd.AddCommand(newProjectsListCmd())
	cmd.AddCommand(newProjectsAddCmd())
	cmd.AddCommand(newProjectsRemoveCmd())
	cmd.AddCommand(newProjectsSearchCmd())
	cmd.AddCommand(newProjectsOpenCmd())

	return cmd
}

func newProjectsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProjectsList(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newProjectsAddCmd() *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "add NAME ROOT",
		Short: "Register a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsAdd(cmd, args[0], args[1], nickname)
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "Short alias for quick matching")

	return cmd
}

func newProjectsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a project from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openProjectRegistry()
			if err != nil {
				return err
			}
			if err := reg.Remove(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Project '%s' removed.\n", args[0])
			return nil
		},
	}
}

func newProjectsSearchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Fuzzy-search projects by name or nickname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsSearch(cmd, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output ranked matches as JSON")

	return cmd
}

func newProjectsOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open NAME",
		Short: "Print a project's root and mark it opened",
		Long: `Print a project's root directory to stdout and stamp its
last-opened time, so it rises to the top of the listing. Meant for
shell integration: cd "$(supertui projects open NAME)".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openProjectRegistry()
			if err != nil {
				return err
			}
			p, err := reg.Get(args[0])
			if err != nil {
				return err
			}
			if err := reg.Touch(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p.Root)
			return nil
		},
	}
}

func runProjectsList(cmd *cobra.Command, jsonOutput bool) error {
	reg, err := openProjectRegistry()
	if err != nil {
		return err
	}

	projects := reg.List()

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(projects)
	}

	if len(projects) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No projects registered.")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Register one with: supertui projects add NAME ROOT")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tNICKNAME\tROOT\tLAST OPENED")
	_, _ = fmt.Fprintln(w, "----\t--------\t----\t-----------")

	for _, p := range projects {
		root := p.Root
		if len(root) > 40 {
			root = "..." + root[len(root)-37:]
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.Name, p.Nickname, root, formatTimeAgo(p.LastOpened))
	}
	_ = w.Flush()

	return nil
}

func runProjectsAdd(cmd *cobra.Command, name, root, nickname string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("project root is not a directory: %s", absRoot)
	}

	reg, err := openProjectRegistry()
	if err != nil {
		return err
	}

	if err := reg.Add(project.Project{
		Name:     name,
		Nickname: nickname,
		Root:     absRoot,
	}); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered '%s' at %s\n", name, absRoot)
	return nil
}

func runProjectsSearch(cmd *cobra.Command, query string, jsonOutput bool) error {
	reg, err := openProjectRegistry()
	if err != nil {
		return err
	}

	matches := reg.Search(query)

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	if len(matches) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No projects match '%s'.\n", query)
		return nil
	}

	render := matchRenderer(cmd)
	for i, m := range matches {
		name := m.Project.Name
		nickname := m.Project.Nickname
		switch m.Field {
		case project.FieldName:
			name = highlightMatch(name, m.MatchedIndexes, render)
		case project.FieldNickname:
			nickname = highlightMatch(nickname, m.MatchedIndexes, render)
		}

		line := name
		if nickname != "" {
			line += " (" + nickname + ")"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s  %s\n", i+1, line, m.Project.Root)
	}

	return nil
}

// matchRenderer picks how matched runes are marked: styled on a color
// terminal, bracketed otherwise so the spans survive piping.
func matchRenderer(cmd *cobra.Command) func(string) string {
	if ui.IsTTY(cmd.OutOrStdout()) && !ui.DetectNoColor() {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ui.ColorLime))
		return func(s string) string { return style.Render(s) }
	}
	return func(s string) string { return "[" + s + "]" }
}

// highlightMatch marks the matched rune spans within text. Consecutive
// matched runes render as one span.
func highlightMatch(text string, indexes []int, render func(string) string) string {
	if len(indexes) == 0 {
		return text
	}

	matched := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		matched[idx] = true
	}

	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if !matched[i] {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && matched[j] {
			j++
		}
		b.WriteString(render(string(runes[i:j])))
		i = j
	}
	return b.String()
}

// openProjectRegistry opens the registry at the configured location.
func openProjectRegistry() (*project.Registry, error) {
	cfg := loadConfigOrDefault()
	return project.NewRegistry(cfg.Workspace.ProjectsPath)
}
