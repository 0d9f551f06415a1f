// Package focus records widget focus transfers for debugging. The data
// is purely diagnostic and purely in-memory: a bounded ring of recent
// transfers plus per-target totals, gone on restart.
package focus

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultHistory is the ring capacity used when none is configured.
const DefaultHistory = 256

// Transfer is one recorded focus move.
type Transfer struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Tracker keeps the most recent transfers in a fixed-size ring. Recording
// never blocks on logging: the verbose flag only gates the debug line,
// the ring always records.
type Tracker struct {
	verbose atomic.Bool

	mu      sync.Mutex
	entries []Transfer
	start   int
	count   int
	counts  map[string]int
}

// NewTracker creates a tracker keeping the last history transfers. A
// non-positive history uses DefaultHistory.
func NewTracker(history int) *Tracker {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Tracker{
		entries: make([]Transfer, history),
		counts:  make(map[string]int),
	}
}

// Record notes a focus transfer and returns it. With verbose enabled,
// every transfer also emits a debug log line with the full context.
func (t *Tracker) Record(from, to, reason string) Transfer {
	tr := Transfer{From: from, To: to, Reason: reason, At: time.Now()}

	t.mu.Lock()
	if t.count < len(t.entries) {
		t.entries[(t.start+t.count)%len(t.entries)] = tr
		t.count++
	} else {
		t.entries[t.start] = tr
		t.start = (t.start + 1) % len(t.entries)
	}
	t.counts[to]++
	total := t.counts[to]
	t.mu.Unlock()

	if t.verbose.Load() {
		slog.Debug("focus transfer",
			slog.String("from", from),
			slog.String("to", to),
			slog.String("reason", reason),
			slog.Int("target_total", total),
		)
	}
	return tr
}

// Recent returns up to n transfers, newest first. A non-positive n
// returns everything in the ring.
func (t *Tracker) Recent(n int) []Transfer {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n <= 0 || n > t.count {
		n = t.count
	}
	out := make([]Transfer, n)
	for i := 0; i < n; i++ {
		// Walk backwards from the newest entry.
		index := (t.start + t.count - 1 - i) % len(t.entries)
		out[i] = t.entries[index]
	}
	return out
}

// Counts returns the total transfers recorded per target, including
// entries the ring has since dropped.
func (t *Tracker) Counts() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]int, len(t.counts))
	for target, n := range t.counts {
		out[target] = n
	}
	return out
}

// SetVerbose toggles the per-transfer debug logging.
func (t *Tracker) SetVerbose(v bool) {
	t.verbose.Store(v)
}

// Verbose reports whether per-transfer debug logging is on.
func (t *Tracker) Verbose() bool {
	return t.verbose.Load()
}
