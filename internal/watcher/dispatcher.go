package watcher

import (
	"log/slog"
	"sync"

	apperrors "github.com/tteejj/supertui/internal/errors"
)

type pathListener struct {
	id int
	fn func(path string)
}

type batchListener struct {
	id int
	fn func(paths []string)
}

// Dispatcher fans a flushed batch out to subscribers: per-path listeners
// receive each path individually, batch listeners receive the whole batch
// once. Listeners run in registration order on the flush goroutine; any
// thread-affinity requirement is the subscriber adapter's concern, not the
// pipeline's.
type Dispatcher struct {
	mu             sync.RWMutex
	nextID         int
	pathListeners  []pathListener
	batchListeners []batchListener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{nextID: 1}
}

// OnFileChanged registers a listener invoked once per path per flush.
// Returns a handle for Remove.
func (d *Dispatcher) OnFileChanged(fn func(path string)) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.pathListeners = append(d.pathListeners, pathListener{id: id, fn: fn})
	return id
}

// OnBatchChanged registers a listener invoked once per flush with the
// complete sorted batch. Returns a handle for Remove.
func (d *Dispatcher) OnBatchChanged(fn func(paths []string)) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.batchListeners = append(d.batchListeners, batchListener{id: id, fn: fn})
	return id
}

// Remove unregisters the listener with the given handle.
// Reports whether a listener was removed.
func (d *Dispatcher) Remove(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, l := range d.pathListeners {
		if l.id == id {
			d.pathListeners = append(d.pathListeners[:i], d.pathListeners[i+1:]...)
			return true
		}
	}
	for i, l := range d.batchListeners {
		if l.id == id {
			d.batchListeners = append(d.batchListeners[:i], d.batchListeners[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch delivers one batch: every per-path listener for every path, then
// every batch listener once. Delivery is best-effort, at most once per
// flush; a failing subscriber is logged and isolated so the remaining
// subscribers still run.
func (d *Dispatcher) Dispatch(batch []string) {
	if len(batch) == 0 {
		return
	}

	d.mu.RLock()
	pathListeners := make([]pathListener, len(d.pathListeners))
	copy(pathListeners, d.pathListeners)
	batchListeners := make([]batchListener, len(d.batchListeners))
	copy(batchListeners, d.batchListeners)
	d.mu.RUnlock()

	for _, path := range batch {
		for _, l := range pathListeners {
			d.invoke(l.id, func() { l.fn(path) })
		}
	}
	for _, l := range batchListeners {
		d.invoke(l.id, func() { l.fn(batch) })
	}
}

// invoke runs one subscriber callback, converting a panic into a logged
// error so a single bad subscriber cannot take down the pipeline.
func (d *Dispatcher) invoke(id int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("watch subscriber panicked",
				slog.String("error_code", apperrors.ErrCodeSubscriberPanic),
				slog.Int("subscriber_id", id),
				slog.Any("panic", r),
			)
		}
	}()
	fn()
}
