package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tteejj/supertui/internal/errors"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(filepath.Join(t.TempDir(), "projects.json"))
	require.NoError(t, err)
	return r
}

func TestNewRegistry_MissingFile_StartsEmpty(t *testing.T) {
	r := newTestRegistry(t)

	assert.Empty(t, r.List())
	_, err := os.Stat(r.Path())
	assert.True(t, os.IsNotExist(err), "registry file should not exist before the first mutation")
}

func TestNewRegistry_EmptyPath_ReturnsError(t *testing.T) {
	_, err := NewRegistry("")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
}

func TestNewRegistry_CorruptFile_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := NewRegistry(path)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRegistryCorrupt, apperrors.GetCode(err))
}

func TestRegistry_Add_PersistsProject(t *testing.T) {
	// Given: an empty registry
	r := newTestRegistry(t)

	// When: a project is added
	require.NoError(t, r.Add(Project{
		Name:     "supertui",
		Nickname: "tui",
		Root:     "/src/supertui",
	}))

	// Then: it is listed with a stamped LastOpened
	got := r.List()
	require.Len(t, got, 1)
	assert.Equal(t, "supertui", got[0].Name)
	assert.Equal(t, "tui", got[0].Nickname)
	assert.False(t, got[0].LastOpened.IsZero())

	// And: a fresh handle over the same file sees it
	reloaded, err := NewRegistry(r.Path())
	require.NoError(t, err)
	require.Len(t, reloaded.List(), 1)
	assert.Equal(t, "supertui", reloaded.List()[0].Name)
}

func TestRegistry_Add_InvalidProject_ReturnsError(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Add(Project{Name: "   ", Root: "/src/x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidName, apperrors.GetCode(err))

	err = r.Add(Project{Name: "x", Root: ""})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
}

func TestRegistry_Add_DuplicateName_ReturnsError(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(Project{Name: "supertui", Root: "/a"}))

	err := r.Add(Project{Name: "supertui", Root: "/b"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
	assert.Len(t, r.List(), 1)
}

func TestRegistry_Add_TrimsWhitespace(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Add(Project{Name: "  supertui  ", Nickname: " tui ", Root: "/src"}))

	got := r.List()[0]
	assert.Equal(t, "supertui", got.Name)
	assert.Equal(t, "tui", got.Nickname)
}

func TestRegistry_Remove_DeletesAndPersists(t *testing.T) {
	// Given: two registered projects
	r := newTestRegistry(t)
	require.NoError(t, r.Add(Project{Name: "keep", Root: "/a"}))
	require.NoError(t, r.Add(Project{Name: "drop", Root: "/b"}))

	// When: one is removed
	require.NoError(t, r.Remove("drop"))

	// Then: only the other remains, on disk too
	require.Len(t, r.List(), 1)
	assert.Equal(t, "keep", r.List()[0].Name)

	reloaded, err := NewRegistry(r.Path())
	require.NoError(t, err)
	require.Len(t, reloaded.List(), 1)

	// And: removing again reports not found
	err = r.Remove("drop")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProjectNotFound, apperrors.GetCode(err))
}

func TestRegistry_List_OrdersByRecency(t *testing.T) {
	// Given: projects opened at different times
	r := newTestRegistry(t)
	now := time.Now().UTC()
	require.NoError(t, r.Add(Project{Name: "oldest", Root: "/a", LastOpened: now.Add(-3 * time.Hour)}))
	require.NoError(t, r.Add(Project{Name: "newest", Root: "/b", LastOpened: now.Add(-time.Hour)}))
	require.NoError(t, r.Add(Project{Name: "middle", Root: "/c", LastOpened: now.Add(-2 * time.Hour)}))

	// Then: most recently opened comes first
	got := r.List()
	require.Len(t, got, 3)
	assert.Equal(t, "newest", got[0].Name)
	assert.Equal(t, "middle", got[1].Name)
	assert.Equal(t, "oldest", got[2].Name)
}

func TestRegistry_List_TiesBreakByName(t *testing.T) {
	r := newTestRegistry(t)
	opened := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, r.Add(Project{Name: "zeta", Root: "/a", LastOpened: opened}))
	require.NoError(t, r.Add(Project{Name: "alpha", Root: "/b", LastOpened: opened}))

	got := r.List()
	assert.Equal(t, "alpha", got[0].Name)
	assert.Equal(t, "zeta", got[1].Name)
}

func TestRegistry_List_ReturnsCopy(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(Project{Name: "supertui", Root: "/src"}))

	got := r.List()
	got[0].Name = "mutated"

	assert.Equal(t, "supertui", r.List()[0].Name)
}

func TestRegistry_Touch_MovesProjectToFront(t *testing.T) {
	// Given: "older" opened before "newer"
	r := newTestRegistry(t)
	now := time.Now().UTC()
	require.NoError(t, r.Add(Project{Name: "older", Root: "/a", LastOpened: now.Add(-2 * time.Hour)}))
	require.NoError(t, r.Add(Project{Name: "newer", Root: "/b", LastOpened: now.Add(-time.Hour)}))
	require.Equal(t, "newer", r.List()[0].Name)

	// When: the older project is touched
	require.NoError(t, r.Touch("older"))

	// Then: it leads the listing, and the stamp survives a reload
	assert.Equal(t, "older", r.List()[0].Name)
	reloaded, err := NewRegistry(r.Path())
	require.NoError(t, err)
	assert.Equal(t, "older", reloaded.List()[0].Name)
}

func TestRegistry_Touch_Unknown_ReturnsNotFound(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Touch("ghost")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProjectNotFound, apperrors.GetCode(err))
}

func TestRegistry_Get_ReturnsProject(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(Project{Name: "supertui", Nickname: "tui", Root: "/src"}))

	got, err := r.Get("supertui")
	require.NoError(t, err)
	assert.Equal(t, "/src", got.Root)

	_, err = r.Get("ghost")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProjectNotFound, apperrors.GetCode(err))
}
