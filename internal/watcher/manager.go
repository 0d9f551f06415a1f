package watcher

import (
	"log/slog"
	"os"
	"sync"

	apperrors "github.com/tteejj/supertui/internal/errors"
)

// Manager coordinates the watch pipeline: it owns the subscription
// registry, the debounce aggregator, and the dispatcher, and guards the
// Disabled/Enabled lifecycle so no watch handle or armed timer survives a
// disable. Construct one at the application's composition root and pass it
// by reference; there is no package-level instance.
type Manager struct {
	opts       Options
	dispatcher *Dispatcher

	mu        sync.Mutex
	state     State
	registry  *Registry
	debouncer *Debouncer
}

// NewManager creates a disabled manager with the given options.
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:       opts.WithDefaults(),
		dispatcher: NewDispatcher(),
		registry:   NewRegistry(),
		state:      StateDisabled,
	}
}

// Enable starts watching the given roots. A missing root is logged and
// skipped; the remaining roots are still watched. Any other watch failure
// rolls back every subscription created by this call and leaves the
// manager disabled. Enabling with no valid roots also leaves it disabled.
// Enable while already enabled is a warning no-op.
func (m *Manager) Enable(roots []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateEnabled {
		slog.Warn("file watching already enabled")
		return nil
	}

	// Fresh debouncer per session: a cancelled one stays latched shut, so
	// events straggling in from closing subscriptions cannot rearm it.
	deb := NewDebouncer(m.opts.Quiescence, m.opts.MaxAggregationWindow, m.dispatcher.Dispatch)
	handler := func(ev FileEvent) {
		deb.Add(ev.Path)
	}

	watched := 0
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			slog.Warn("watch root missing, skipping",
				slog.String("error_code", apperrors.ErrCodeRootNotFound),
				slog.String("root", root),
			)
			continue
		}

		if err := m.registry.Add(root, m.opts.Pattern, m.opts.Recursive, handler); err != nil {
			deb.Cancel()
			m.registry.CloseAll()
			return err
		}
		watched++
	}

	if watched == 0 {
		deb.Cancel()
		slog.Warn("no valid watch roots, staying disabled",
			slog.Int("requested", len(roots)),
		)
		return apperrors.ConfigError("no valid watch roots", nil)
	}

	m.debouncer = deb
	m.state = StateEnabled
	slog.Info("file watching enabled",
		slog.Int("roots", watched),
		slog.String("pattern", m.opts.Pattern),
		slog.Duration("quiescence", m.opts.Quiescence),
	)
	return nil
}

// Disable tears the pipeline down. The debounce timer is cancelled before
// any watch handle is released, so a flush can never fire against freed
// subscriptions; a delivery already in flight finishes on its own
// goroutine. Idempotent.
func (m *Manager) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDisabled {
		slog.Debug("file watching already disabled")
		return
	}

	m.debouncer.Cancel()
	m.registry.CloseAll()
	m.debouncer = nil
	m.state = StateDisabled
	slog.Info("file watching disabled")
}

// AddWatch registers one more subscription while enabled. A warning no-op
// when disabled. An empty pattern inherits the manager's pattern.
func (m *Manager) AddWatch(path, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateEnabled {
		slog.Warn("cannot add watch while disabled", slog.String("path", path))
		return nil
	}
	if pattern == "" {
		pattern = m.opts.Pattern
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return apperrors.New(apperrors.ErrCodeRootNotFound, "watch root not found: "+path, err)
	}

	deb := m.debouncer
	addErr := m.registry.Add(path, pattern, m.opts.Recursive, func(ev FileEvent) {
		deb.Add(ev.Path)
	})
	if addErr != nil {
		return addErr
	}

	slog.Info("watch added",
		slog.String("root", path),
		slog.String("pattern", pattern),
	)
	return nil
}

// OnFileChanged registers a listener invoked once per path per flush.
// Returns a handle for RemoveListener.
func (m *Manager) OnFileChanged(fn func(path string)) int {
	return m.dispatcher.OnFileChanged(fn)
}

// OnBatchChanged registers a listener invoked once per flush with the
// complete sorted batch. Returns a handle for RemoveListener.
func (m *Manager) OnBatchChanged(fn func(paths []string)) int {
	return m.dispatcher.OnBatchChanged(fn)
}

// RemoveListener unregisters a listener by its handle.
func (m *Manager) RemoveListener(id int) bool {
	return m.dispatcher.Remove(id)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Roots returns the roots currently being watched.
func (m *Manager) Roots() []string {
	return m.registry.Roots()
}

// Options returns the manager's effective options.
func (m *Manager) Options() Options {
	return m.opts
}

// Stats returns a point-in-time diagnostic snapshot.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{
		Enabled:      m.state == StateEnabled,
		WatchedPaths: m.registry.Count(),
	}
	if m.debouncer != nil {
		st.PendingChanges = m.debouncer.Pending()
	}
	return st
}
