package ui

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlainBuf() (*PlainRenderer, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewPlainRenderer(NewConfig(buf)), buf
}

func TestPlainRenderer_BatchLine(t *testing.T) {
	r, buf := newPlainBuf()

	r.BatchFlushed(BatchEvent{
		Seq:   3,
		Paths: []string{"/proj/src/Main.cs", "/proj/src/Util.cs"},
		At:    time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC),
	})

	line := buf.String()
	assert.Contains(t, line, "15:04:05")
	assert.Contains(t, line, "[batch 3]")
	assert.Contains(t, line, "2 file(s)")
	assert.Contains(t, line, "/proj/src/Main.cs")
	assert.Contains(t, line, "/proj/src/Util.cs")
}

func TestPlainRenderer_BatchLine_ElidesLongLists(t *testing.T) {
	r, buf := newPlainBuf()

	paths := make([]string, 12)
	for i := range paths {
		paths[i] = fmt.Sprintf("/proj/file%02d.cs", i)
	}
	r.BatchFlushed(BatchEvent{Seq: 1, Paths: paths, At: time.Now()})

	// The count stays accurate while the listing is cut at the cap.
	line := buf.String()
	assert.Contains(t, line, "12 file(s)")
	assert.Contains(t, line, "(+4 more)")
	assert.NotContains(t, line, "file11.cs")
}

func TestPlainRenderer_NeverEmitsANSI(t *testing.T) {
	r, buf := newPlainBuf()

	r.BatchFlushed(BatchEvent{Seq: 1, Paths: []string{"/a.cs"}, At: time.Now()})
	r.ToastEvent(ToastNotice{ID: 1, Level: "info", Message: "1 file changed"})

	assert.NotContains(t, buf.String(), "\x1b[", "plain output must stay free of escape codes")
}

func TestPlainRenderer_ToastLine(t *testing.T) {
	r, buf := newPlainBuf()

	r.ToastEvent(ToastNotice{ID: 7, Level: "warning", Message: "watch root removed"})

	assert.Contains(t, buf.String(), "WARNING:")
	assert.Contains(t, buf.String(), "watch root removed")
}

func TestPlainRenderer_SilentEvents(t *testing.T) {
	t.Run("toast dismissals", func(t *testing.T) {
		r, buf := newPlainBuf()

		r.ToastEvent(ToastNotice{ID: 7, Level: "info", Message: "3 files changed", Dismissed: true})

		assert.Empty(t, buf.String())
	})

	t.Run("stats updates", func(t *testing.T) {
		r, buf := newPlainBuf()

		r.UpdateStats(WatchStats{Enabled: true, WatchedPaths: 3, PendingChanges: 2})

		assert.Empty(t, buf.String())
	})
}

func TestPlainRenderer_Complete(t *testing.T) {
	t.Run("basic summary", func(t *testing.T) {
		r, buf := newPlainBuf()

		r.Complete(SessionSummary{Batches: 14, Changes: 37, Duration: 5 * time.Second})

		line := buf.String()
		assert.Contains(t, line, "Watch stopped:")
		assert.Contains(t, line, "14 batch(es)")
		assert.Contains(t, line, "37 change(s)")
		assert.Contains(t, line, "5s")
	})

	t.Run("notification count when toasts were shown", func(t *testing.T) {
		r, buf := newPlainBuf()

		r.Complete(SessionSummary{Batches: 2, Changes: 3, Toasts: 2, Duration: 10 * time.Second})

		assert.Contains(t, buf.String(), "2 notification(s)")
	})
}

func TestPlainRenderer_StartStopAreNoops(t *testing.T) {
	r, _ := newPlainBuf()

	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Stop())
}

func TestPlainRenderer_ConcurrentEvents(t *testing.T) {
	r, buf := newPlainBuf()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r.BatchFlushed(BatchEvent{
				Seq:   n,
				Paths: []string{fmt.Sprintf("/proj/file%d.cs", n)},
				At:    time.Now(),
			})
			r.ToastEvent(ToastNotice{ID: n, Level: "info", Message: "changed"})
		}(i)
	}
	wg.Wait()

	assert.NotEmpty(t, buf.String())
}
