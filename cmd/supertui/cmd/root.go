// Package cmd provides the CLI commands for SuperTUI.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/tteejj/supertui/internal/errors"
	"github.com/tteejj/supertui/internal/logging"
	"github.com/tteejj/supertui/internal/profiling"
	"github.com/tteejj/supertui/pkg/version"
)

// Persistent flag state, shared by the pre/post run hooks.
var (
	debugMode    bool
	profileCPU   string
	profileMem   string
	profileTrace string

	cpuCleanup     func()
	traceCleanup   func()
	loggingCleanup func()
)

// NewRootCmd creates the root command for the supertui CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supertui",
		Short: "Workspace infrastructure for live-reload development",
		Long: `SuperTUI watches source trees and aggregates file changes into
debounced batches, manages workspace layout templates, and keeps a
fuzzy-searchable registry of your projects.

Run 'supertui watch' in a project directory to start a watch session.`,
		Version: version.Version,
		// Execute prints errors itself, with their hint and code.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation shows help; watching is explicit.
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("supertui version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.supertui/logs/")
	flags.StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	flags.StringVar(&profileMem, "profile-mem", "", "Write memory profile to file")
	flags.StringVar(&profileTrace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startDiagnostics
	cmd.PersistentPostRunE = stopDiagnostics

	cmd.AddCommand(
		newWatchCmd(),
		newTemplatesCmd(),
		newProjectsCmd(),
		newDoctorCmd(),
		newInitCmd(),
		newConfigCmd(),
		newLogsCmd(),
		newVersionCmd(),
	)
	return cmd
}

// startDiagnostics turns on debug logging and CPU/trace profiling when
// the corresponding persistent flags are set.
func startDiagnostics(_ *cobra.Command, _ []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}

	if profileCPU != "" {
		stop, err := profiling.StartCPU(profileCPU)
		if err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		cpuCleanup = stop
	}

	if profileTrace != "" {
		stop, err := profiling.StartTrace(profileTrace)
		if err != nil {
			if cpuCleanup != nil {
				cpuCleanup()
			}
			return fmt.Errorf("failed to start trace: %w", err)
		}
		traceCleanup = stop
	}

	return nil
}

// stopDiagnostics flushes profiles and closes the debug log. The heap
// snapshot is taken here so it reflects the command's full run.
func stopDiagnostics(_ *cobra.Command, _ []string) error {
	if cpuCleanup != nil {
		cpuCleanup()
		cpuCleanup = nil
	}
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}

	if profileMem != "" {
		if err := profiling.WriteHeap(profileMem); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
	}

	if loggingCleanup != nil {
		slog.Info("debug logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command. Errors are printed to stderr in their
// terminal form; with --debug the underlying cause is included.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, apperrors.FormatForCLI(err, debugMode))
	}
	return err
}
