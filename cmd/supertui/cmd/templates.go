package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tteejj/supertui/internal/config"
	"github.com/tteejj/supertui/internal/workspace"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage workspace layout templates",
		Long: `List, inspect, and manage named workspace layout templates.

Templates are JSON files, one per template, stored under the templates
directory (~/.supertui/templates by default). Each template places
widgets on the workspace grid.

Examples:
  # List all templates
  supertui templates

  # Inspect one
  supertui templates show dev-dashboard

  # Save a layout file under a new name
  supertui templates save dev-dashboard --file layout.json

  # Move a template between machines
  supertui templates export dev-dashboard dashboard.json
  supertui templates import dashboard.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTemplatesList(cmd, false)
		},
	}

	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesShowCmd())
	cmd.AddCommand(newTemplatesSaveCmd())
	cmd.AddCommand(newTemplatesDeleteCmd())
	cmd.AddCommand(newTemplatesExportCmd())
	cmd.AddCommand(newTemplatesImportCmd())

	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTemplatesList(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newTemplatesShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one template's layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplatesShow(cmd, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newTemplatesSaveCmd() *cobra.Command {
	var (
		file        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save a template from a layout file",
		Long: `Save a template under NAME.

With --file, the layout is read from a template JSON file; its name
field is replaced by NAME. Without --file, an empty template is
created as a starting point. Saving over an existing name overwrites
its layout but keeps the original creation time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplatesSave(cmd, args[0], file, description)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Template JSON file to read the layout from")
	cmd.Flags().StringVar(&description, "description", "", "Template description")

	return cmd
}

func newTemplatesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTemplateStore()
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Template '%s' deleted.\n", args[0])
			return nil
		},
	}
}

func newTemplatesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME DEST",
		Short: "Export a template to a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTemplateStore()
			if err != nil {
				return err
			}
			if err := store.Export(args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported '%s' to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newTemplatesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import SRC",
		Short: "Import a template from a JSON file",
		Long: `Import a template JSON file into the store.

The template is saved under the name in its own name field,
overwriting any existing template with that name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTemplateStore()
			if err != nil {
				return err
			}
			tpl, err := store.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported '%s' (%d widget(s))\n", tpl.Name, len(tpl.Layout))
			return nil
		},
	}
}

func runTemplatesList(cmd *cobra.Command, jsonOutput bool) error {
	store, err := openTemplateStore()
	if err != nil {
		return err
	}

	templates, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	}

	if len(templates) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Save one with: supertui templates save NAME --file layout.json")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tWIDGETS\tUPDATED\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-------\t-------\t-----------")

	for _, tpl := range templates {
		desc := tpl.Description
		if len(desc) > 48 {
			desc = desc[:45] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			tpl.Name, len(tpl.Layout), formatTimeAgo(tpl.UpdatedAt), desc)
	}
	_ = w.Flush()

	return nil
}

func runTemplatesShow(cmd *cobra.Command, name string, jsonOutput bool) error {
	store, err := openTemplateStore()
	if err != nil {
		return err
	}

	tpl, err := store.Get(name)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tpl)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Name:        %s\n", tpl.Name)
	if tpl.Description != "" {
		_, _ = fmt.Fprintf(out, "Description: %s\n", tpl.Description)
	}
	_, _ = fmt.Fprintf(out, "Created:     %s\n", tpl.CreatedAt.Local().Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintf(out, "Updated:     %s\n", tpl.UpdatedAt.Local().Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintln(out)

	if len(tpl.Layout) == 0 {
		_, _ = fmt.Fprintln(out, "Layout is empty.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WIDGET\tROW\tCOL\tSPAN")
	_, _ = fmt.Fprintln(w, "------\t---\t---\t----")
	for _, p := range tpl.Layout {
		rowSpan, colSpan := p.RowSpan, p.ColSpan
		if rowSpan == 0 {
			rowSpan = 1
		}
		if colSpan == 0 {
			colSpan = 1
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%dx%d\n", p.Widget, p.Row, p.Col, rowSpan, colSpan)
	}
	_ = w.Flush()

	return nil
}

func runTemplatesSave(cmd *cobra.Command, name, file, description string) error {
	store, err := openTemplateStore()
	if err != nil {
		return err
	}

	tpl := &workspace.Template{Name: name}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read layout file: %w", err)
		}
		if err := json.Unmarshal(data, tpl); err != nil {
			return fmt.Errorf("failed to parse layout file %s: %w", file, err)
		}
		tpl.Name = name // The argument wins over the file's name field.
	}
	if description != "" {
		tpl.Description = description
	}

	if err := store.Save(cmd.Context(), tpl); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved '%s' (%d widget(s))\n", tpl.Name, len(tpl.Layout))
	return nil
}

// openTemplateStore opens the template store at the configured location.
func openTemplateStore() (*workspace.Store, error) {
	cfg := loadConfigOrDefault()
	return workspace.NewStore(cfg.Workspace.TemplatesPath, cfg.Workspace.CacheSize)
}

// loadConfigOrDefault loads the merged configuration for the current
// project, falling back to defaults when no config can be read.
func loadConfigOrDefault() *config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		return config.NewConfig()
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		root = cwd
	}
	cfg, err := config.Load(root)
	if err != nil {
		return config.NewConfig()
	}
	return cfg
}

// formatTimeAgo formats a time as a human-readable "time ago" string.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}
