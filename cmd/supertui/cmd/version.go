package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tteejj/supertui/pkg/version"
)

type versionOptions struct {
	json  bool
	short bool
}

func newVersionCmd() *cobra.Command {
	var opts versionOptions

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print version information including git commit, build date, and Go version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&opts.short, "short", false, "Output only the version number")

	return cmd
}

func runVersion(cmd *cobra.Command, opts versionOptions) error {
	out := cmd.OutOrStdout()

	// --short wins over --json when both are set.
	switch {
	case opts.short:
		_, err := fmt.Fprintln(out, version.Short())
		return err
	case opts.json:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(version.GetInfo())
	default:
		_, err := fmt.Fprintln(out, version.String())
		return err
	}
}
