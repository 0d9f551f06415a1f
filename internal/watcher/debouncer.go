package watcher

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects accepted paths into a pending set and, once the event
// stream has been quiet for the quiescence window, hands them to the flush
// callback as one sorted batch. Every Add rearms the timer to fire the full
// window after the *latest* arrival, so a burst of rapid saves to one file,
// or a recursive touch across many, produces exactly one batch once writers
// go quiet.
//
// Duplicate paths collapse to a single entry. The pending set and timer are
// guarded by one mutex held only for short critical sections; the flush
// callback runs with the mutex released so consumers never block producers.
// Flushes themselves are serialized: a slow consumer delays the next batch's
// delivery, never event acceptance.
type Debouncer struct {
	quiescence time.Duration
	maxWindow  time.Duration
	flush      func(batch []string)

	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	gen      uint64
	deadline time.Time
	stopped  bool

	flushMu sync.Mutex
}

// NewDebouncer creates a debouncer delivering batches to flush.
// maxWindow caps how long a continuous event stream can keep deferring
// delivery; zero lets the window rearm indefinitely.
func NewDebouncer(quiescence, maxWindow time.Duration, flush func(batch []string)) *Debouncer {
	return &Debouncer{
		quiescence: quiescence,
		maxWindow:  maxWindow,
		flush:      flush,
		pending:    make(map[string]struct{}),
	}
}

// Add inserts a path into the pending set and rearms the quiescence timer.
// Inserting a path already pending is a no-op apart from the rearm.
// Add after Cancel does nothing.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if len(d.pending) == 0 && d.maxWindow > 0 {
		d.deadline = time.Now().Add(d.maxWindow)
	}
	d.pending[path] = struct{}{}
	d.arm()
}

// arm starts or restarts the one-shot flush timer. Caller holds d.mu.
func (d *Debouncer) arm() {
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}

	delay := d.quiescence
	if !d.deadline.IsZero() {
		if remaining := time.Until(d.deadline); remaining < delay {
			delay = remaining
			if delay < 0 {
				delay = 0
			}
		}
	}

	d.timer = time.AfterFunc(delay, func() {
		d.fire(gen)
	})
}

// fire delivers the pending batch if this timer generation is still live.
// A stale generation means Add rearmed, or Cancel stopped, the timer after
// this callback was already scheduled.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()

	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	if len(d.pending) == 0 {
		d.timer = nil
		d.mu.Unlock()
		return
	}

	batch := make([]string, 0, len(d.pending))
	for path := range d.pending {
		batch = append(batch, path)
	}
	sort.Strings(batch)

	d.pending = make(map[string]struct{})
	d.timer = nil
	d.deadline = time.Time{}

	d.mu.Unlock()

	d.flushMu.Lock()
	defer d.flushMu.Unlock()
	d.flush(batch)
}

// Cancel stops the timer, discards pending paths, and latches the debouncer
// shut: later Adds are no-ops. Idempotent.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[string]struct{})
	d.deadline = time.Time{}
}

// Pending returns the number of distinct paths awaiting flush.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
