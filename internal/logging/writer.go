package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter is an io.Writer over a log file that rotates the file
// aside once it reaches a size cap. Rotation shifts supertui.log to
// supertui.log.1, .1 to .2, and so on; the file past maxFiles is dropped.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu       sync.Mutex
	file     *os.File
	size     int64
	syncEach bool
}

// NewRotatingWriter opens a rotating writer at path, creating the parent
// directory if needed. maxSizeMB is the rotation threshold in megabytes.
// Each write is synced to disk by default so `supertui logs -f` sees
// lines as they land.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		path:     path,
		maxSize:  int64(maxSizeMB) << 20,
		maxFiles: maxFiles,
		syncEach: true,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetImmediateSync toggles the per-write disk sync. Turning it off trades
// `logs -f` latency for write throughput.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncEach = enabled
}

// Write appends to the current file, rotating first when the write would
// push it past the size cap.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rotateIfNeeded(int64(len(p)))

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err == nil && w.syncEach {
		_ = w.file.Sync()
	}
	return n, err
}

// Sync flushes the current file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// rotateIfNeeded rotates when incoming bytes would push the file past the
// cap. A failed rotation keeps logging into the oversized file; losing
// lines is worse than blowing the cap. Callers hold w.mu.
func (w *RotatingWriter) rotateIfNeeded(incoming int64) {
	if w.size+incoming <= w.maxSize {
		return
	}
	if err := w.rotate(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
}

// open opens or creates the log file and records its current size.
func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.size = info.Size()
	return nil
}

// rotate shifts the numbered history up one slot and starts a fresh file:
// the slot past maxFiles is removed, each .n becomes .n+1, the current
// file becomes .1. Missing slots are skipped. Callers hold w.mu.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	_ = os.Remove(w.archivePath(w.maxFiles))
	for n := w.maxFiles - 1; n >= 1; n-- {
		err := os.Rename(w.archivePath(n), w.archivePath(n+1))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to shift log archive %d: %w", n, err)
		}
	}

	if err := os.Rename(w.path, w.archivePath(1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	w.size = 0
	return w.open()
}

func (w *RotatingWriter) archivePath(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}
