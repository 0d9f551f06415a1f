package watcher

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	apperrors "github.com/tteejj/supertui/internal/errors"
)

// subscription is one watched root: its glob, recursion flag, the OS watch
// handle, and the goroutine forwarding raw events into the shared handler.
type subscription struct {
	root      string
	pattern   string
	recursive bool
	fw        *fsnotify.Watcher
	done      chan struct{}
}

// Registry owns the active watch subscriptions. OS-level watch handles are
// scarce; every handle acquired by Add is released by CloseAll, or by Add
// itself when setup fails partway.
type Registry struct {
	mu   sync.Mutex
	subs []*subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add creates a watch subscription rooted at root and starts forwarding
// filtered events to handler. With recursive set, every non-ignored
// directory under root is registered, and directories created later join
// the watch as their create events arrive.
func (r *Registry) Add(root, pattern string, recursive bool, handler func(FileEvent)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return apperrors.WatchError("resolve watch root "+root, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.WatchError("create watch handle", err)
	}

	if recursive {
		err = addTree(fw, absRoot)
	} else {
		err = fw.Add(absRoot)
	}
	if err != nil {
		_ = fw.Close()
		return apperrors.WatchError("register watch for "+absRoot, err)
	}

	s := &subscription{
		root:      absRoot,
		pattern:   pattern,
		recursive: recursive,
		fw:        fw,
		done:      make(chan struct{}),
	}
	go s.forward(handler)

	r.mu.Lock()
	r.subs = append(r.subs, s)
	r.mu.Unlock()

	return nil
}

// CloseAll releases every watch handle and waits for the forwarding
// goroutines to drain. Idempotent.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, s := range subs {
		_ = s.fw.Close()
	}
	for _, s := range subs {
		<-s.done
	}
}

// Count returns the number of active subscriptions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Roots returns the roots of the active subscriptions in add order.
func (r *Registry) Roots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	roots := make([]string, len(r.subs))
	for i, s := range r.subs {
		roots[i] = s.root
	}
	return roots
}

// addTree registers root and every non-ignored directory beneath it.
func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable subtree, skip
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && ShouldIgnore(rel) {
				return fs.SkipDir
			}
		}
		return fw.Add(path)
	})
}

// forward pumps raw fsnotify events through the filter into handler.
// This goroutine is the subscription's delivery thread; it exits when the
// watch handle closes.
func (s *subscription) forward(handler func(FileEvent)) {
	defer close(s.done)

	for {
		select {
		case ev, ok := <-s.fw.Events:
			if !ok {
				return
			}
			s.handleRaw(ev, handler)
		case err, ok := <-s.fw.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error",
				slog.String("root", s.root),
				slog.String("error", err.Error()),
			)
		}
	}
}

// handleRaw converts one fsnotify event, maintains the recursive watch for
// new directories, and forwards accepted file events. Filtering happens
// here, on the delivery goroutine, so the aggregator's critical section
// stays small.
func (s *subscription) handleRaw(ev fsnotify.Event, handler func(FileEvent)) {
	var op Operation
	switch {
	case ev.Op&fsnotify.Create != 0:
		op = OpCreate
	case ev.Op&fsnotify.Write != 0:
		op = OpModify
	case ev.Op&fsnotify.Remove != 0:
		op = OpDelete
	case ev.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		// Chmod and unknown ops are noise.
		return
	}

	rel, err := filepath.Rel(s.root, ev.Name)
	if err != nil {
		rel = ev.Name
	}

	isDir := false
	if info, statErr := os.Stat(ev.Name); statErr == nil {
		isDir = info.IsDir()
	}

	// Directories are watch-maintenance only; they never reach the
	// aggregator.
	if isDir {
		if op == OpCreate && s.recursive && !ShouldIgnore(rel) {
			if addErr := s.fw.Add(ev.Name); addErr != nil {
				slog.Warn("failed to watch new directory",
					slog.String("path", ev.Name),
					slog.String("error", addErr.Error()),
				)
			}
		}
		return
	}

	if ShouldIgnore(rel) || !matchesPattern(filepath.Base(ev.Name), s.pattern) {
		return
	}

	handler(FileEvent{
		Path:      ev.Name,
		Operation: op,
		IsDir:     false,
		Timestamp: time.Now(),
	})
}
