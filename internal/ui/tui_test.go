package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
)

func TestNewTUIRenderer_ReturnsNilForNonTTY(t *testing.T) {
	// Given: a non-TTY buffer
	buf := &bytes.Buffer{}
	cfg := NewConfig(buf)

	// When: creating TUI renderer
	r, err := NewTUIRenderer(cfg)

	// Then: returns error (can't create TUI for non-TTY)
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestSpinnerFor_StyleNames(t *testing.T) {
	assert.Equal(t, spinner.Line, spinnerFor("line"))
	assert.Equal(t, spinner.MiniDot, spinnerFor("minidot"))
	assert.Equal(t, spinner.Jump, spinnerFor("jump"))
	assert.Equal(t, spinner.Dot, spinnerFor("dots"))
	assert.Equal(t, spinner.Dot, spinnerFor("no such style"))
}

func TestWatchModel_InitialView(t *testing.T) {
	// Given: a new watch model
	tracker := NewSessionTracker()
	model := newWatchModel(tracker, Config{})

	// When: getting initial view
	view := model.View()

	// Then: view shows the dashboard header and counters
	assert.Contains(t, view, "SuperTUI Watch")
	assert.Contains(t, view, "Batches:")
	assert.Contains(t, view, "Changes:")
}

func TestWatchModel_RootLabelInHeader(t *testing.T) {
	// Given: a model with a root label
	tracker := NewSessionTracker()
	model := newWatchModel(tracker, Config{RootLabel: "/home/dev/proj"})

	// When: rendering view
	view := model.View()

	// Then: the label appears in the header
	assert.Contains(t, view, "/home/dev/proj")
}

func TestWatchModel_RecentBatchesDisplay(t *testing.T) {
	// Given: a model whose tracker has batches
	tracker := NewSessionTracker()
	tracker.RecordBatch(BatchEvent{
		Seq:   1,
		Paths: []string{"/proj/src/Button.cs"},
		At:    time.Now(),
	})

	model := newWatchModel(tracker, Config{})

	// When: rendering view
	view := model.View()

	// Then: the batch shows up in the recent list
	assert.Contains(t, view, "Recent batches:")
	assert.Contains(t, view, "Button.cs")
	assert.Contains(t, view, "1 file(s)")
}

func TestWatchModel_PendingDisplay(t *testing.T) {
	// Given: a model with pending changes
	tracker := NewSessionTracker()
	tracker.SetStats(WatchStats{Enabled: true, WatchedPaths: 2, PendingChanges: 3})

	model := newWatchModel(tracker, Config{})

	// When: rendering view
	view := model.View()

	// Then: pending count is shown
	assert.Contains(t, view, "3 pending")
	assert.Contains(t, view, "2 path(s)")
}

func TestWatchModel_ToastDisplay(t *testing.T) {
	// Given: a model with an active toast
	tracker := NewSessionTracker()
	model := newWatchModel(tracker, Config{})
	model.applyToast(ToastNotice{ID: 1, Level: "info", Message: "3 files changed"})

	// When: rendering view
	view := model.View()

	// Then: the toast is visible with its level tag
	assert.Contains(t, view, "[info]")
	assert.Contains(t, view, "3 files changed")
}

func TestWatchModel_ToastDismissalRemoves(t *testing.T) {
	// Given: a model with a toast that then gets dismissed
	tracker := NewSessionTracker()
	model := newWatchModel(tracker, Config{})
	model.applyToast(ToastNotice{ID: 1, Level: "info", Message: "3 files changed"})
	model.applyToast(ToastNotice{ID: 1, Dismissed: true})

	// When: rendering view
	view := model.View()

	// Then: the toast is gone
	assert.NotContains(t, view, "3 files changed")
}

func TestWatchModel_CompletionState(t *testing.T) {
	// Given: a completed model
	tracker := NewSessionTracker()
	model := newWatchModel(tracker, Config{})
	model.complete = true
	model.summary = SessionSummary{
		Batches:  14,
		Changes:  37,
		Duration: 2 * time.Minute,
	}

	// When: rendering view
	view := model.View()

	// Then: shows the stop summary
	assert.Contains(t, view, "Watch Stopped")
	assert.Contains(t, view, "14")
	assert.Contains(t, view, "37")
}

func TestSummarizePaths_FewPaths(t *testing.T) {
	// Given: two paths
	paths := []string{"/proj/src/Main.cs", "/proj/src/Util.cs"}

	// When: summarizing
	result := summarizePaths(paths, 3)

	// Then: base names are joined
	assert.Equal(t, "Main.cs, Util.cs", result)
}

func TestSummarizePaths_ElidesRest(t *testing.T) {
	// Given: five paths with a limit of three
	paths := []string{"/a/1.cs", "/a/2.cs", "/a/3.cs", "/a/4.cs", "/a/5.cs"}

	// When: summarizing
	result := summarizePaths(paths, 3)

	// Then: the rest is counted
	assert.Contains(t, result, "1.cs, 2.cs, 3.cs")
	assert.Contains(t, result, "+2 more")
}

func TestSummarizePaths_Empty(t *testing.T) {
	// Given: no paths
	// When: summarizing
	result := summarizePaths(nil, 3)

	// Then: returns empty
	assert.Equal(t, "", result)
}

func TestTruncate_Short(t *testing.T) {
	// Given: a short string
	s := "Main.cs"

	// When: truncating to a generous width
	result := truncate(s, 50)

	// Then: unchanged
	assert.Equal(t, s, result)
}

func TestTruncate_Long(t *testing.T) {
	// Given: a long string
	s := "a very long toast message that will not fit on one dashboard line"

	// When: truncating to 20 runes
	result := truncate(s, 20)

	// Then: cut with an ellipsis
	assert.Len(t, []rune(result), 20)
	assert.Contains(t, result, "…")
}

func TestFormatDuration_Ranges(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 15*time.Second, "2m 15s"},
		{90 * time.Minute, "1h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}

func TestTUIRenderer_InterfaceCompliance(t *testing.T) {
	// Ensure TUIRenderer implements Renderer
	var _ Renderer = (*TUIRenderer)(nil)
}
