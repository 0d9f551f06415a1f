// Package notify is the toast notification center: short-lived,
// auto-dismissing messages fanned out to subscribers. The center holds no
// presentation logic; renderers subscribe and draw.
package notify

import (
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/tteejj/supertui/internal/errors"
)

type subscriber struct {
	id int
	fn func(Event)
}

// Center manages active toasts and their auto-dismiss timers. Events are
// delivered synchronously on the goroutine that triggered them (the Show
// or Dismiss caller, or a timer goroutine for auto-dismiss).
type Center struct {
	opts Options

	mu     sync.Mutex
	nextID int
	active []Toast
	timers map[int]*time.Timer
	closed bool

	subMu   sync.RWMutex
	nextSub int
	subs    []subscriber
}

// NewCenter creates a center with the given options.
func NewCenter(opts Options) *Center {
	return &Center{
		opts:   opts.WithDefaults(),
		timers: map[int]*time.Timer{},
	}
}

// Show raises a toast and schedules its auto-dismiss. If the center is at
// MaxActive, the oldest toast is dismissed to make room. After Close, Show
// is a no-op returning the zero Toast.
func (c *Center) Show(level Level, message string) Toast {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Toast{}
	}

	c.nextID++
	toast := Toast{
		ID:        c.nextID,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}
	c.active = append(c.active, toast)

	var evicted []Toast
	for len(c.active) > c.opts.MaxActive {
		oldest := c.active[0]
		c.active = c.active[1:]
		c.stopTimerLocked(oldest.ID)
		evicted = append(evicted, oldest)
	}

	c.timers[toast.ID] = time.AfterFunc(c.opts.Duration, func() {
		c.Dismiss(toast.ID)
	})
	c.mu.Unlock()

	slog.Debug("toast shown",
		slog.Int("id", toast.ID),
		slog.String("level", string(level)),
	)

	for _, old := range evicted {
		c.emit(Event{Kind: KindDismissed, Toast: old})
	}
	c.emit(Event{Kind: KindShown, Toast: toast})
	return toast
}

// Dismiss removes a toast before its timer fires. Reports whether the
// toast was still active.
func (c *Center) Dismiss(id int) bool {
	c.mu.Lock()
	idx := -1
	for i, t := range c.active {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	toast := c.active[idx]
	c.active = append(c.active[:idx:idx], c.active[idx+1:]...)
	c.stopTimerLocked(id)
	c.mu.Unlock()

	c.emit(Event{Kind: KindDismissed, Toast: toast})
	return true
}

// Active returns the active toasts, oldest first.
func (c *Center) Active() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toast, len(c.active))
	copy(out, c.active)
	return out
}

// Subscribe registers a callback for toast events and returns its cancel
// function. A panicking subscriber is logged and skipped; the others still
// run.
func (c *Center) Subscribe(fn func(Event)) func() {
	c.subMu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Close cancels every pending auto-dismiss timer and drops the active
// toasts without emitting dismissal events. Idempotent.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, tm := range c.timers {
		tm.Stop()
		delete(c.timers, id)
	}
	c.active = nil
}

func (c *Center) stopTimerLocked(id int) {
	if tm, ok := c.timers[id]; ok {
		tm.Stop()
		delete(c.timers, id)
	}
}

// emit copies the subscriber list, then invokes outside any lock so
// callbacks may call back into the center (Active, Dismiss, their own
// cancel) without deadlocking.
func (c *Center) emit(ev Event) {
	c.subMu.RLock()
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.subMu.RUnlock()

	for _, s := range subs {
		c.invoke(s, ev)
	}
}

func (c *Center) invoke(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("toast subscriber panicked",
				slog.String("error_code", apperrors.ErrCodeSubscriberPanic),
				slog.Int("subscriber_id", s.id),
				slog.Any("panic", r),
			)
		}
	}()
	s.fn(ev)
}
