package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tteejj/supertui/internal/config"
	"github.com/tteejj/supertui/internal/preflight"
)

type doctorOptions struct {
	verbose bool
	json    bool
}

func newDoctorCmd() *cobra.Command {
	var opts doctorOptions

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system requirements and diagnose issues",
		Long: `Run system diagnostics to ensure SuperTUI can operate correctly.

Checks:
  - State directory (~/.supertui) exists and is writable
  - Configuration loads and validates
  - Template storage directory is writable
  - Configured watch roots exist
  - Disk space (100MB minimum)
  - File descriptor limits (1024 minimum)
  - inotify watch limits (Linux only)

Note: inotify and missing-root checks are non-critical warnings.

Use --verbose for detailed diagnostic information.
Use --json for machine-readable output.`,
		Example: `  # Run diagnostics
  supertui doctor

  # Verbose output with details
  supertui doctor --verbose

  # JSON output for scripting
  supertui doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(cmd *cobra.Command, opts doctorOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := config.FindProjectRoot(".")
	if err != nil {
		root, _ = os.Getwd()
	}

	checker := preflight.New(
		preflight.WithVerbose(opts.verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
	)
	results := checker.RunAll(ctx, root)

	if opts.json {
		return printDoctorJSON(cmd, checker, results)
	}
	checker.PrintResults(results)

	// A marker means `watch` has been skipping its startup preflight;
	// show how stale that decision is.
	stateDir := config.StateDir()
	if !preflight.NeedsCheck(stateDir) {
		if age := preflight.MarkerAge(stateDir); age > 0 {
			cmd.Printf("\nLast successful check: %s ago\n", formatDuration(age))
		}
	}

	if checker.HasCriticalFailures(results) {
		return errors.New("system check failed")
	}
	return nil
}

// JSONOutput is the machine-readable doctor report.
type JSONOutput struct {
	Status   string            `json:"status"`
	Checks   []JSONCheckResult `json:"checks"`
	Warnings []string          `json:"warnings,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
}

// JSONCheckResult is a single check in the JSON report.
type JSONCheckResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Required bool   `json:"required"`
	Details  string `json:"details,omitempty"`
}

func printDoctorJSON(cmd *cobra.Command, checker *preflight.Checker, results []preflight.CheckResult) error {
	report := JSONOutput{Status: checker.SummaryStatus(results)}

	for _, r := range results {
		report.Checks = append(report.Checks, JSONCheckResult{
			Name:     r.Name,
			Status:   statusToString(r.Status),
			Message:  r.Message,
			Required: r.Required,
			Details:  r.Details,
		})

		issue := r.Name + ": " + r.Message
		switch {
		case r.IsCritical():
			report.Errors = append(report.Errors, issue)
		case r.Status == preflight.StatusWarn:
			report.Warnings = append(report.Warnings, issue)
		}
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

func statusToString(s preflight.CheckStatus) string {
	return strings.ToLower(s.String())
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	switch {
	case hours < 1:
		return "less than 1 hour"
	case hours == 1:
		return "1 hour"
	case hours < 24:
		return fmt.Sprintf("%d hours", hours)
	case hours < 48:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", hours/24)
	}
}
