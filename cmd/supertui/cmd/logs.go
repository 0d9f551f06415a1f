package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tteejj/supertui/internal/logging"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
	logFile string
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View SuperTUI logs",
		Long: `View and tail SuperTUI logs.

By default, shows the last 50 lines of ~/.supertui/logs/supertui.log.
Use -f to follow new log entries in real-time (like 'tail -f').

Examples:
  supertui logs                   # Show last 50 lines
  supertui logs -n 100            # Show last 100 lines
  supertui logs -f                # Follow logs in real-time
  supertui logs --level error     # Show only error logs
  supertui logs --filter "batch"  # Filter by pattern`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	flags.IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	flags.StringVar(&opts.level, "level", "", "Filter by log level (debug|info|warn|error)")
	flags.StringVar(&opts.filter, "filter", "", "Filter by keyword/pattern (regex)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&opts.logFile, "file", "", "Path to log file")

	return cmd
}

// compileFilter turns the --filter flag into a regexp, or nil when unset.
func compileFilter(filter string) (*regexp.Regexp, error) {
	if filter == "" {
		return nil, nil
	}
	pattern, err := regexp.Compile(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}
	return pattern, nil
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	path, err := logging.FindLogFile(opts.logFile)
	if err != nil {
		return err
	}

	pattern, err := compileFilter(opts.filter)
	if err != nil {
		return err
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor,
	}, cmd.OutOrStdout())

	// The banner goes to stderr so piped output stays clean JSON lines.
	stderr := cmd.ErrOrStderr()
	_, _ = fmt.Fprintf(stderr, "Log file: %s\n", path)
	if opts.follow {
		_, _ = fmt.Fprintf(stderr, "Following... (Ctrl+C to stop)\n")
	}
	_, _ = fmt.Fprintln(stderr, "---")

	if !opts.follow {
		entries, err := viewer.Tail(path, opts.lines)
		if err != nil {
			return err
		}
		viewer.Print(entries)
		return nil
	}

	return runLogsFollow(cmd, viewer, path)
}

func runLogsFollow(cmd *cobra.Command, viewer *logging.Viewer, path string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)
	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), viewer.FormatEntry(entry))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "\n---")
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Stopped.")
			return nil
		}
	}
}
