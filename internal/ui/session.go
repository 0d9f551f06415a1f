package ui

import (
	"sync"
	"time"
)

// recentBatchCap is how many flushed batches the tracker retains for display.
const recentBatchCap = 16

// rateWindow is the interval over which the change rate is computed.
const rateWindow = time.Minute

// SessionTracker accumulates watch session state for display.
// It is safe for concurrent use.
type SessionTracker struct {
	mu        sync.RWMutex
	startTime time.Time
	batches   int
	changes   int
	toasts    int
	lastFlush time.Time
	stats     WatchStats

	// Recent batches, newest last. Trimmed to recentBatchCap.
	recent []BatchEvent

	// Batch size smoothing for the rate panel.
	avgBatch  float64
	peakBatch int
	sparkline *Sparkline
}

// RateStats contains change-rate metrics for display.
type RateStats struct {
	PerMinute float64 // changes per minute over the recent window
	AvgBatch  float64 // smoothed average batch size
	PeakBatch int     // largest batch seen
}

// SessionStats contains a snapshot of the current session.
type SessionStats struct {
	Enabled        bool
	WatchedPaths   int
	PendingChanges int
	Batches        int
	Changes        int
	Toasts         int
	LastFlush      time.Time
	Elapsed        time.Duration
	Rate           RateStats
}

// NewSessionTracker creates a new session tracker.
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{
		startTime: time.Now(),
		sparkline: NewSparkline(60),
	}
}

// batchSmoothingFactor controls how much weight a new batch size gets in the
// rolling average. 0.2 gives a responsive but stable figure.
const batchSmoothingFactor = 0.2

// RecordBatch records a flushed batch.
func (t *SessionTracker) RecordBatch(event BatchEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if event.At.IsZero() {
		event.At = time.Now()
	}

	size := len(event.Paths)
	t.batches++
	t.changes += size
	t.lastFlush = event.At

	t.recent = append(t.recent, event)
	if len(t.recent) > recentBatchCap {
		t.recent = t.recent[len(t.recent)-recentBatchCap:]
	}

	if t.batches == 1 {
		t.avgBatch = float64(size)
	} else {
		t.avgBatch = batchSmoothingFactor*float64(size) + (1-batchSmoothingFactor)*t.avgBatch
	}
	if size > t.peakBatch {
		t.peakBatch = size
	}

	t.sparkline.Add(float64(size))
}

// RecordToast counts a toast shown during the session.
func (t *SessionTracker) RecordToast(event ToastNotice) {
	if event.Dismissed {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts++
}

// SetStats stores the latest pipeline snapshot.
func (t *SessionTracker) SetStats(stats WatchStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = stats
}

// Stats returns a snapshot of the session.
func (t *SessionTracker) Stats() SessionStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return SessionStats{
		Enabled:        t.stats.Enabled,
		WatchedPaths:   t.stats.WatchedPaths,
		PendingChanges: t.stats.PendingChanges,
		Batches:        t.batches,
		Changes:        t.changes,
		Toasts:         t.toasts,
		LastFlush:      t.lastFlush,
		Elapsed:        time.Since(t.startTime),
		Rate:           t.rateLocked(),
	}
}

// Recent returns the retained batches, newest first.
func (t *SessionTracker) Recent() []BatchEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]BatchEvent, len(t.recent))
	for i, b := range t.recent {
		result[len(t.recent)-1-i] = b
	}
	return result
}

// Rate returns current change-rate statistics.
func (t *SessionTracker) Rate() RateStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rateLocked()
}

// rateLocked computes the rate snapshot. Callers hold t.mu.
func (t *SessionTracker) rateLocked() RateStats {
	perMinute := 0.0
	cutoff := time.Now().Add(-rateWindow)
	windowed := 0
	for _, b := range t.recent {
		if b.At.After(cutoff) {
			windowed += len(b.Paths)
		}
	}
	if windowed > 0 {
		// Scale to a per-minute figure even when the session is younger
		// than the window.
		span := time.Since(t.startTime)
		if span > rateWindow {
			span = rateWindow
		}
		if span > 0 {
			perMinute = float64(windowed) / span.Minutes()
		}
	}

	return RateStats{
		PerMinute: perMinute,
		AvgBatch:  t.avgBatch,
		PeakBatch: t.peakBatch,
	}
}

// Elapsed returns time since tracker creation.
func (t *SessionTracker) Elapsed() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return time.Since(t.startTime)
}

// Summary returns the final session summary.
func (t *SessionTracker) Summary() SessionSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return SessionSummary{
		Batches:  t.batches,
		Changes:  t.changes,
		Toasts:   t.toasts,
		Duration: time.Since(t.startTime),
	}
}

// RenderSparkline returns the batch-size sparkline string.
func (t *SessionTracker) RenderSparkline(width int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.sparkline == nil {
		return ""
	}

	if width <= 0 {
		return t.sparkline.Render()
	}
	return t.sparkline.RenderWithWidth(width)
}
