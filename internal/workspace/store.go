// Package workspace persists named workspace layout templates as JSON
// files, one per template, under a single directory.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/tteejj/supertui/internal/errors"
)

const (
	templateExt  = ".json"
	lockFileName = ".store.lock"

	defaultCacheSize   = 32
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 25 * time.Millisecond
	listConcurrency    = 8
)

// cacheEntry pairs a loaded template with the file mtime it was read at.
// A changed mtime invalidates the entry, so edits made by other processes
// are picked up.
type cacheEntry struct {
	tpl     *Template
	modTime time.Time
}

// Store reads and writes templates under one directory. Mutations are
// guarded by an in-process mutex plus a file lock, so concurrent
// processes sharing the directory cannot interleave writes. Reads skip
// the lock: writes are atomic (temp file + rename), so a reader sees
// either the old file or the new one.
type Store struct {
	dir         string
	lock        *flock.Flock
	lockTimeout time.Duration

	mu    sync.Mutex
	cache *lru.Cache[string, cacheEntry]
}

// NewStore opens (creating if needed) a template store at dir. A
// cacheSize of zero or less uses the default.
func NewStore(dir string, cacheSize int) (*Store, error) {
	if dir == "" {
		return nil, apperrors.ValidationError("templates directory cannot be empty", nil)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeStateDirUnavailable,
			"failed to create templates directory: "+dir, err)
	}

	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, cacheEntry](cacheSize)
	if err != nil {
		return nil, apperrors.InternalError("failed to create template cache", err)
	}

	return &Store{
		dir:         dir,
		lock:        flock.New(filepath.Join(dir, lockFileName)),
		lockTimeout: defaultLockTimeout,
		cache:       cache,
	}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Get loads one template by name, serving from cache when the file has
// not changed since it was cached.
func (s *Store) Get(name string) (*Template, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	path := s.templatePath(name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.New(apperrors.ErrCodeTemplateNotFound,
			"template not found: "+name, err)
	}
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeTemplateCorrupt,
			"failed to stat template file: "+path, err)
	}

	if entry, ok := s.cache.Get(name); ok && entry.modTime.Equal(info.ModTime()) {
		return entry.tpl.clone(), nil
	}

	tpl, err := readTemplate(path)
	if err != nil {
		return nil, err
	}
	// The file name is canonical; the content's name field follows it.
	tpl.Name = name

	s.cache.Add(name, cacheEntry{tpl: tpl.clone(), modTime: info.ModTime()})
	return tpl, nil
}

// Save validates and persists a template, stamping UpdatedAt and, for new
// templates, CreatedAt. Overwriting keeps the original CreatedAt. The
// write is atomic: temp file in the same directory, then rename.
func (s *Store) Save(ctx context.Context, tpl *Template) error {
	if tpl == nil {
		return apperrors.ValidationError("template cannot be nil", nil)
	}
	if err := tpl.Validate(); err != nil {
		return err
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	now := time.Now().UTC()
	path := s.templatePath(tpl.Name)
	if existing, readErr := readTemplate(path); readErr == nil && !existing.CreatedAt.IsZero() {
		tpl.CreatedAt = existing.CreatedAt
	} else if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return apperrors.InternalError("failed to marshal template: "+tpl.Name, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return apperrors.New(apperrors.ErrCodeStateDirUnavailable,
			"failed to write template file: "+tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.New(apperrors.ErrCodeStateDirUnavailable,
			"failed to save template file: "+path, err)
	}

	if info, statErr := os.Stat(path); statErr == nil {
		s.cache.Add(tpl.Name, cacheEntry{tpl: tpl.clone(), modTime: info.ModTime()})
	}

	slog.Debug("template saved",
		slog.String("name", tpl.Name),
		slog.Int("placements", len(tpl.Layout)),
	)
	return nil
}

// Delete removes a template by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	path := s.templatePath(name)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.New(apperrors.ErrCodeTemplateNotFound,
				"template not found: "+name, err)
		}
		return apperrors.New(apperrors.ErrCodeStateDirUnavailable,
			"failed to delete template: "+name, err)
	}
	s.cache.Remove(name)

	slog.Debug("template deleted", slog.String("name", name))
	return nil
}

// List loads every template in the store, sorted by name. Files are
// loaded concurrently; corrupt ones are logged and skipped so a single
// bad file cannot hide the rest.
func (s *Store) List(ctx context.Context) ([]*Template, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeStateDirUnavailable,
			"failed to read templates directory: "+s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), templateExt)
		if ValidateName(name) != nil {
			continue // foreign file in the store directory
		}
		names = append(names, name)
	}

	loaded := make([]*Template, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			tpl, err := s.Get(name)
			if err != nil {
				switch apperrors.GetCode(err) {
				case apperrors.ErrCodeTemplateCorrupt:
					attrs := append([]any{slog.String("name", name)}, apperrors.LogAttrs(err)...)
					slog.Warn("skipping corrupt template", attrs...)
					return nil
				case apperrors.ErrCodeTemplateNotFound:
					return nil // deleted between ReadDir and Get
				}
				return err
			}
			loaded[i] = tpl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Template, 0, len(loaded))
	for _, tpl := range loaded {
		if tpl != nil {
			out = append(out, tpl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Export writes one template as indented JSON to an arbitrary path
// outside the store.
func (s *Store) Export(name, destPath string) error {
	tpl, err := s.Get(name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return apperrors.InternalError("failed to marshal template: "+name, err)
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return apperrors.ValidationError("failed to write export file: "+destPath, err)
	}
	return nil
}

// Import reads a template JSON file from an arbitrary path, validates it,
// and saves it into the store under its own name, overwriting any
// existing template with that name.
func (s *Store) Import(ctx context.Context, srcPath string) (*Template, error) {
	tpl, err := readTemplate(srcPath)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *Store) templatePath(name string) string {
	return filepath.Join(s.dir, name+templateExt)
}

// acquire serializes mutations: in-process via the mutex (the flock
// handle is reentrant within one process, so it cannot do this job),
// cross-process via the file lock. The returned func releases both.
func (s *Store) acquire(ctx context.Context) (func(), error) {
	s.mu.Lock()

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	ok, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !ok {
		s.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrCodeStoreLocked,
			"template store is locked by another process", err)
	}
	return func() {
		_ = s.lock.Unlock()
		s.mu.Unlock()
	}, nil
}

// readTemplate loads and parses one template file.
func readTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.New(apperrors.ErrCodeTemplateNotFound,
			"template file not found: "+path, err)
	}
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeTemplateCorrupt,
			"failed to read template file: "+path, err)
	}

	var tpl Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeTemplateCorrupt,
			"failed to parse template file: "+path, err)
	}
	return &tpl, nil
}
