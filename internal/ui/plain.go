package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// maxPlainPaths caps how many paths a batch line lists before eliding.
const maxPlainPaths = 8

// PlainRenderer outputs one line per event (for CI/pipes).
type PlainRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	stats WatchStats
}

var _ Renderer = (*PlainRenderer)(nil)

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error { return nil }

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error { return nil }

// batchList renders the path list for one line, eliding past the cap.
func batchList(paths []string) string {
	if len(paths) <= maxPlainPaths {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s (+%d more)",
		strings.Join(paths[:maxPlainPaths], ", "), len(paths)-maxPlainPaths)
}

// BatchFlushed implements Renderer. One line per batch:
//
//	15:04:05 [batch 3] 2 file(s): a.cs, b.cs
func (r *PlainRenderer) BatchFlushed(event BatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := event.At
	if at.IsZero() {
		at = time.Now()
	}

	_, _ = fmt.Fprintf(r.out, "%s [batch %d] %d file(s): %s\n",
		at.Format("15:04:05"), event.Seq, len(event.Paths), batchList(event.Paths))
}

// ToastEvent implements Renderer.
// Dismissals are noise on a line-oriented stream and are skipped.
func (r *PlainRenderer) ToastEvent(event ToastNotice) {
	if event.Dismissed {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "%s: %s\n", strings.ToUpper(event.Level), event.Message)
}

// UpdateStats implements Renderer. Stats are kept for the final summary
// but not printed per update.
func (r *PlainRenderer) UpdateStats(stats WatchStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = stats
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(summary SessionSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "Watch stopped: %d batch(es), %d change(s) in %s",
		summary.Batches, summary.Changes, summary.Duration.Round(100*time.Millisecond))
	if summary.Toasts > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d notification(s))", summary.Toasts)
	}
	_, _ = fmt.Fprintln(r.out)
}
