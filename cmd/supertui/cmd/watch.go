package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tteejj/supertui/internal/config"
	apperrors "github.com/tteejj/supertui/internal/errors"
	"github.com/tteejj/supertui/internal/logging"
	"github.com/tteejj/supertui/internal/notify"
	"github.com/tteejj/supertui/internal/preflight"
	"github.com/tteejj/supertui/internal/ui"
	"github.com/tteejj/supertui/internal/watcher"
)

// watchOptions carries the watch command's flag values.
type watchOptions struct {
	pattern    string
	quiescence string
	maxWindow  string
	plain      bool
	noColor    bool
	jsonOutput bool
	skipCheck  bool
}

func newWatchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch [roots...]",
		Short: "Watch source trees and aggregate changes into batches",
		Long: `Start a watch session over one or more directory trees.

File changes matching the configured pattern are aggregated with a
quiescence window: a batch is delivered once the tree has been quiet
for the debounce duration, so a save-all or a git checkout arrives as
one batch instead of a burst.

Roots given as arguments override watch.roots from the configuration;
with neither, the project root is watched. Missing roots are skipped
with a warning.

The session renders a live dashboard on a TTY and plain lines
otherwise. Press q or Ctrl+C to stop.`,
		Example: `  # Watch the current project
  supertui watch

  # Watch specific trees with a custom pattern
  supertui watch src tests --pattern "*.go"

  # Wider quiescence window, capped deferral
  supertui watch --quiescence 2s --max-window 10s

  # One JSON object per batch, for scripting
  supertui watch --json | jq -r .paths[]`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "Filename glob changes must match (overrides config)")
	cmd.Flags().StringVar(&opts.quiescence, "quiescence", "", "Quiescence window, e.g. 500ms (overrides config)")
	cmd.Flags().StringVar(&opts.maxWindow, "max-window", "", "Cap on delivery deferral, e.g. 5s; 0 means no cap")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Force the line renderer even on a TTY")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Emit one JSON object per batch (NDJSON)")
	cmd.Flags().BoolVar(&opts.skipCheck, "skip-check", false, "Skip pre-flight system checks")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, args []string, opts watchOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		root = cwd
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyWatchFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// First run (or a stale marker) gates on the system checks; doctor
	// prints the same checks with full diagnostics.
	if !opts.skipCheck && preflight.NeedsCheck(config.StateDir()) {
		checker := preflight.New(preflight.WithOutput(io.Discard))
		results := checker.RunAll(ctx, root)
		if checker.HasCriticalFailures(results) {
			return fmt.Errorf("system check failed - run 'supertui doctor' for diagnostics")
		}
		if err := preflight.MarkPassed(config.StateDir()); err != nil {
			slog.Debug("failed to record preflight marker", slog.String("error", err.Error()))
		}
	}

	watchOpts, err := watcherOptions(cfg)
	if err != nil {
		return err
	}
	roots := resolveWatchRoots(root, cfg.Watch.Roots, args)

	if opts.jsonOutput {
		return runWatchJSON(ctx, cmd, watchOpts, roots)
	}
	return runWatchSession(ctx, cmd, cfg, watchOpts, roots, opts)
}

// applyWatchFlags lets flags override the merged configuration.
func applyWatchFlags(cfg *config.Config, opts watchOptions) {
	if opts.pattern != "" {
		cfg.Watch.Pattern = opts.pattern
	}
	if opts.quiescence != "" {
		cfg.Watch.Debounce = opts.quiescence
	}
	if opts.maxWindow != "" {
		cfg.Watch.MaxWindow = opts.maxWindow
	}
	if opts.plain {
		cfg.UI.Plain = true
	}
	if opts.noColor {
		cfg.UI.NoColor = true
	}
}

// watcherOptions converts the validated configuration into pipeline options.
func watcherOptions(cfg *config.Config) (watcher.Options, error) {
	quiescence, err := cfg.DebounceWindow()
	if err != nil {
		return watcher.Options{}, err
	}
	maxWindow, err := cfg.MaxAggregationWindow()
	if err != nil {
		return watcher.Options{}, err
	}
	return watcher.Options{
		Pattern:              cfg.Watch.Pattern,
		Quiescence:           quiescence,
		MaxAggregationWindow: maxWindow,
		Recursive:            cfg.Watch.Recursive,
	}, nil
}

// resolveWatchRoots picks the roots for this session: command-line
// arguments beat configured roots beat the project root itself.
// Relative arguments resolve against the working directory, relative
// configured roots against the project root.
func resolveWatchRoots(projectRoot string, cfgRoots, args []string) []string {
	if len(args) > 0 {
		out := make([]string, 0, len(args))
		for _, arg := range args {
			if abs, err := filepath.Abs(arg); err == nil {
				out = append(out, abs)
			} else {
				out = append(out, arg)
			}
		}
		return out
	}

	if len(cfgRoots) > 0 {
		out := make([]string, 0, len(cfgRoots))
		for _, r := range cfgRoots {
			if filepath.IsAbs(r) {
				out = append(out, r)
			} else {
				out = append(out, filepath.Join(projectRoot, r))
			}
		}
		return out
	}

	return []string{projectRoot}
}

// rootLabel builds the dashboard header label from the session roots.
func rootLabel(roots []string) string {
	if len(roots) == 0 {
		return ""
	}
	label := filepath.Base(roots[0])
	if len(roots) > 1 {
		label = fmt.Sprintf("%s +%d", label, len(roots)-1)
	}
	return label
}

func statsToUI(s watcher.Stats) ui.WatchStats {
	return ui.WatchStats{
		Enabled:        s.Enabled,
		WatchedPaths:   s.WatchedPaths,
		PendingChanges: s.PendingChanges,
	}
}

// runWatchSession runs the interactive session: renderer, toast center,
// and watch pipeline wired together until the context is cancelled.
func runWatchSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config, watchOpts watcher.Options, roots []string, opts watchOptions) error {
	// The session owns the terminal, so logs go to file only; stderr
	// writes would tear the dashboard.
	if cleanup, err := logging.SetupTUIMode(cfg.Logging.Level); err == nil {
		defer cleanup()
	}

	uiCfg := ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(cfg.UI.Plain),
		ui.WithNoColor(cfg.UI.NoColor),
		ui.WithRootLabel(rootLabel(roots)),
	)
	renderer := ui.NewRenderer(uiCfg)
	if err := renderer.Start(ctx); err != nil {
		slog.Warn("failed to start watch renderer", apperrors.LogAttrs(err)...)
	}
	defer func() { _ = renderer.Stop() }()

	toastOpts := notify.Options{MaxActive: cfg.Notifications.MaxActive}
	if d, derr := cfg.ToastDuration(); derr == nil {
		toastOpts.Duration = d
	}
	center := notify.NewCenter(toastOpts)
	defer center.Close()

	var toastsShown atomic.Int64
	unsubscribe := center.Subscribe(func(ev notify.Event) {
		if ev.Kind == notify.KindShown {
			toastsShown.Add(1)
		}
		renderer.ToastEvent(ui.ToastNotice{
			ID:        ev.Toast.ID,
			Level:     string(ev.Toast.Level),
			Message:   ev.Toast.Message,
			Dismissed: ev.Kind == notify.KindDismissed,
		})
	})
	defer unsubscribe()

	manager := watcher.NewManager(watchOpts)

	var batches, changes atomic.Int64
	listener := manager.OnBatchChanged(func(paths []string) {
		seq := batches.Add(1)
		changes.Add(int64(len(paths)))
		renderer.BatchFlushed(ui.BatchEvent{
			Seq:   int(seq),
			Paths: paths,
			At:    time.Now(),
		})
		center.Show(notify.LevelInfo, fmt.Sprintf("%d file(s) changed", len(paths)))
	})
	defer manager.RemoveListener(listener)

	start := time.Now()
	if err := manager.Enable(roots); err != nil {
		return err
	}
	renderer.UpdateStats(statsToUI(manager.Stats()))

	// Keep the dashboard's pipeline stats fresh.
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				renderer.UpdateStats(statsToUI(manager.Stats()))
			}
		}
	}()

	<-ctx.Done()

	manager.Disable()
	renderer.Complete(ui.SessionSummary{
		Batches:  int(batches.Load()),
		Changes:  int(changes.Load()),
		Toasts:   int(toastsShown.Load()),
		Duration: time.Since(start),
	})
	return nil
}

// batchLine is one NDJSON record per delivered batch.
type batchLine struct {
	Type  string    `json:"type"`
	Seq   int       `json:"seq"`
	At    time.Time `json:"at"`
	Paths []string  `json:"paths"`
}

// summaryLine is the final NDJSON record written on shutdown.
type summaryLine struct {
	Type     string `json:"type"`
	Batches  int    `json:"batches"`
	Changes  int    `json:"changes"`
	Duration string `json:"duration"`
}

// errorLine is an NDJSON record written before a fatal exit, so stream
// consumers see why the session ended.
type errorLine struct {
	Type  string          `json:"type"`
	Error json.RawMessage `json:"error"`
}

// runWatchJSON streams batches as NDJSON on stdout for scripting.
// Diagnostics go to stderr so the stream stays parseable.
func runWatchJSON(ctx context.Context, cmd *cobra.Command, watchOpts watcher.Options, roots []string) error {
	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if logger, cleanup, err := logging.Setup(logCfg); err == nil {
		slog.SetDefault(logger)
		defer cleanup()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())

	var mu sync.Mutex
	var batches, changes int

	manager := watcher.NewManager(watchOpts)
	listener := manager.OnBatchChanged(func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		batches++
		changes += len(paths)
		_ = enc.Encode(batchLine{
			Type:  "batch",
			Seq:   batches,
			At:    time.Now().UTC(),
			Paths: paths,
		})
	})
	defer manager.RemoveListener(listener)

	start := time.Now()
	if err := manager.Enable(roots); err != nil {
		if data, jerr := apperrors.FormatJSON(err); jerr == nil {
			_ = enc.Encode(errorLine{Type: "error", Error: data})
		}
		return err
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d root(s)... (Ctrl+C to stop)\n", len(manager.Roots()))

	<-ctx.Done()
	manager.Disable()

	mu.Lock()
	defer mu.Unlock()
	return enc.Encode(summaryLine{
		Type:     "summary",
		Batches:  batches,
		Changes:  changes,
		Duration: time.Since(start).Round(time.Millisecond).String(),
	})
}
