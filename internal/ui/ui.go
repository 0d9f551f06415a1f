// Package ui provides terminal UI components for live watch sessions.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// BatchEvent represents one flushed batch of aggregated file changes.
type BatchEvent struct {
	// Seq is the 1-based batch sequence number within the session.
	Seq int

	// Paths are the distinct changed paths in the batch, sorted.
	Paths []string

	// At is when the batch was flushed.
	At time.Time
}

// ToastNotice mirrors a toast lifecycle event for display.
type ToastNotice struct {
	ID        int
	Level     string // "info", "success", "warning", "error"
	Message   string
	Dismissed bool
}

// WatchStats is a point-in-time snapshot of the watch pipeline.
type WatchStats struct {
	Enabled        bool
	WatchedPaths   int
	PendingChanges int
}

// SessionSummary contains final statistics for a watch session.
type SessionSummary struct {
	Batches  int
	Changes  int
	Toasts   int
	Duration time.Duration
}

// Renderer defines the interface for watch session display.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// BatchFlushed displays a flushed change batch.
	BatchFlushed(event BatchEvent)

	// ToastEvent displays a toast appearing or going away.
	ToastEvent(event ToastNotice)

	// UpdateStats refreshes the pipeline stats display.
	UpdateStats(stats WatchStats)

	// Complete marks the session as finished with a summary.
	Complete(summary SessionSummary)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Config configures the UI renderer.
type Config struct {
	Output       io.Writer
	ForcePlain   bool
	NoColor      bool
	SpinnerStyle string
	RootLabel    string // Watched root path(s) to display in header
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) { c.ForcePlain = force }
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) { c.NoColor = noColor }
}

// WithSpinnerStyle selects the dashboard spinner ("dots", "line",
// "minidot", "jump").
func WithSpinnerStyle(style string) ConfigOption {
	return func(c *Config) { c.SpinnerStyle = style }
}

// WithRootLabel sets the watched root label to display in the header.
func WithRootLabel(label string) ConfigOption {
	return func(c *Config) { c.RootLabel = label }
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output:       output,
		SpinnerStyle: "dots",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer picks the renderer for the environment: the bubbletea
// dashboard on interactive terminals, plain line output for pipes, CI,
// or when --plain is set.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}

	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// ciEnvVars are the markers CI systems set; any one of them demotes
// the dashboard to plain output.
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	for _, v := range ciEnvVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
