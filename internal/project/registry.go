// Package project tracks the projects a user works in: a small JSON
// registry plus fuzzy search over names and nicknames.
package project

import (
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

	apperrors "github.com/tteejj/supertui/internal/errors"
)

// registryVersion is the current projects.json format version.
const registryVersion = 1

// Project is one registered project.
type Project struct {
	// Name is the display name, unique within the registry.
	Name string `json:"name"`

	// Nickname is an optional short alias used for quick matching.
	Nickname string `json:"nickname,omitempty"`

	// Root is the project's directory.
	Root string `json:"root"`

	// LastOpened orders the registry listing, most recent first.
	LastOpened time.Time `json:"last_opened"`
}

// registryFile is the on-disk shape of projects.json.
type registryFile struct {
	Version  int       `json:"version"`
	Projects []Project `json:"projects"`
}

// Registry is the project list backed by a single JSON file. Mutations
// persist immediately with an atomic write.
type Registry struct {
	path string

	mu       sync.Mutex
	projects []Project
}

// NewRegistry opens the registry at path, loading it if the file exists.
// A missing file means an empty registry; the file is created on the
// first mutation.
func NewRegistry(path string) (*Registry, error) {
	if path == "" {
		return nil, apperrors.ValidationError("registry path cannot be empty", nil)
	}

	r := &Registry{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeRegistryCorrupt,
			"failed to read project registry: "+path, err)
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeRegistryCorrupt,
			"failed to parse project registry: "+path, err)
	}
	r.projects = file.Projects
	return r, nil
}

// Path returns the registry file path.
func (r *Registry) Path() string {
	return r.path
}

// Add registers a project. The name must be non-blank and unused; a zero
// LastOpened is stamped with the current time.
func (r *Registry) Add(p Project) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Nickname = strings.TrimSpace(p.Nickname)
	if p.Name == "" {
		return apperrors.New(apperrors.ErrCodeInvalidName, "project name cannot be empty", nil)
	}
	if strings.TrimSpace(p.Root) == "" {
		return apperrors.ValidationError("project root cannot be empty", nil)
	}
	if p.LastOpened.IsZero() {
		p.LastOpened = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOfLocked(p.Name) >= 0 {
		return apperrors.ValidationError("project already registered: "+p.Name, nil)
	}
	r.projects = append(r.projects, p)
	if err := r.saveLocked(); err != nil {
		r.projects = r.projects[:len(r.projects)-1]
		return err
	}

	slog.Debug("project added",
		slog.String("name", p.Name),
		slog.String("root", p.Root),
	)
	return nil
}

// Remove deletes a project by name.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOfLocked(name)
	if idx < 0 {
		return apperrors.New(apperrors.ErrCodeProjectNotFound,
			"project not found: "+name, nil)
	}

	snapshot := r.projects
	r.projects = append(r.projects[:idx:idx], r.projects[idx+1:]...)
	if err := r.saveLocked(); err != nil {
		r.projects = snapshot
		return err
	}

	slog.Debug("project removed", slog.String("name", name))
	return nil
}

// Touch stamps a project's LastOpened with the current time.
func (r *Registry) Touch(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOfLocked(name)
	if idx < 0 {
		return apperrors.New(apperrors.ErrCodeProjectNotFound,
			"project not found: "+name, nil)
	}

	previous := r.projects[idx].LastOpened
	r.projects[idx].LastOpened = time.Now().UTC()
	if err := r.saveLocked(); err != nil {
		r.projects[idx].LastOpened = previous
		return err
	}
	return nil
}

// List returns the projects most recently opened first; ties break by
// name.
func (r *Registry) List() []Project {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Project, len(r.projects))
	copy(out, r.projects)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastOpened.Equal(out[j].LastOpened) {
			return out[i].LastOpened.After(out[j].LastOpened)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Get returns one project by name.
func (r *Registry) Get(name string) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOfLocked(name)
	if idx < 0 {
		return Project{}, apperrors.New(apperrors.ErrCodeProjectNotFound,
			"project not found: "+name, nil)
	}
	return r.projects[idx], nil
}

func (r *Registry) indexOfLocked(name string) int {
	for i, p := range r.projects {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// saveLocked writes the registry atomically: temp file in the same
// directory, then rename. Callers hold r.mu.
func (r *Registry) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return apperrors.New(apperrors.ErrCodeStateDirUnavailable,
			"failed to create registry directory", err)
	}

	data, err := json.MarshalIndent(registryFile{
		Version:  registryVersion,
		Projects: r.projects,
	}, "", "  ")
	if err != nil {
		return apperrors.InternalError("failed to marshal project registry", err)
	}

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return apperrors.New(apperrors.ErrCodeStateDirUnavailable,
			"failed to write project registry", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.New(apperrors.ErrCodeStateDirUnavailable,
			"failed to save project registry", err)
	}
	return nil
}
