package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tteejj/supertui/internal/config"
	"github.com/tteejj/supertui/internal/notify"
	"github.com/tteejj/supertui/internal/watcher"
)

// Watch Pipeline Integration Tests - These drive real filesystem changes
// through the full stack (fsnotify subscriptions, quiescence aggregation,
// subscriber dispatch) to verify the components work together correctly.

// tempRoot returns a symlink-resolved temp directory so delivered event
// paths compare equal to paths built with filepath.Join.
func tempRoot(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

// startPipeline creates an enabled manager with a batch channel wired in.
func startPipeline(t *testing.T, opts watcher.Options, roots ...string) (*watcher.Manager, <-chan []string) {
	t.Helper()

	m := watcher.NewManager(opts)
	batches := make(chan []string, 16)
	m.OnBatchChanged(func(paths []string) {
		batches <- paths
	})

	require.NoError(t, m.Enable(roots))
	t.Cleanup(m.Disable)
	return m, batches
}

// waitForBatch blocks until the pipeline flushes a batch or the timeout hits.
func waitForBatch(t *testing.T, batches <-chan []string, timeout time.Duration) []string {
	t.Helper()
	select {
	case batch := <-batches:
		return batch
	case <-time.After(timeout):
		t.Fatalf("no batch delivered within %s", timeout)
		return nil
	}
}

// expectQuiet asserts that no batch arrives for the given duration.
func expectQuiet(t *testing.T, batches <-chan []string, wait time.Duration) {
	t.Helper()
	select {
	case batch := <-batches:
		t.Fatalf("unexpected batch delivered: %v", batch)
	case <-time.After(wait):
	}
}

// TestIntegration_CreateFile_FlowsThroughPipeline tests the complete flow:
// write a file -> fsnotify -> aggregation -> batch delivery.
func TestIntegration_CreateFile_FlowsThroughPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: an enabled pipeline watching a directory
	dir := tempRoot(t)
	_, batches := startPipeline(t, watcher.Options{
		Pattern:    "*.cs",
		Quiescence: 100 * time.Millisecond,
		Recursive:  true,
	}, dir)

	// When: creating a matching file
	file := filepath.Join(dir, "Program.cs")
	require.NoError(t, os.WriteFile(file, []byte("class Program {}"), 0644))

	// Then: one batch arrives containing its absolute path
	batch := waitForBatch(t, batches, 3*time.Second)
	assert.Contains(t, batch, file, "Batch should carry the created file")
}

// TestIntegration_EditBurst_CoalescesIntoOneSortedBatch tests that a burst
// of saves across files, including repeat saves of the same file, lands as
// a single deduplicated batch once writers go quiet.
func TestIntegration_EditBurst_CoalescesIntoOneSortedBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: an enabled pipeline
	dir := tempRoot(t)
	_, batches := startPipeline(t, watcher.Options{
		Pattern:    "*.cs",
		Quiescence: 150 * time.Millisecond,
		Recursive:  true,
	}, dir)

	fileA := filepath.Join(dir, "Alpha.cs")
	fileB := filepath.Join(dir, "Beta.cs")

	// When: saving both files rapidly, one of them twice
	require.NoError(t, os.WriteFile(fileB, []byte("class Beta {}"), 0644))
	require.NoError(t, os.WriteFile(fileA, []byte("class Alpha {}"), 0644))
	require.NoError(t, os.WriteFile(fileB, []byte("class Beta { int n; }"), 0644))

	// Then: exactly one batch arrives, deduplicated and sorted
	batch := waitForBatch(t, batches, 3*time.Second)
	assert.Equal(t, []string{fileA, fileB}, batch)

	// And: no second batch follows for the same burst
	expectQuiet(t, batches, 400*time.Millisecond)
}

// TestIntegration_NoiseAndPatternFiltering_KeepsBatchClean tests that
// non-matching files, dotfiles, and build output never reach subscribers.
func TestIntegration_NoiseAndPatternFiltering_KeepsBatchClean(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a project tree with a build output directory
	dir := tempRoot(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "bin"), 0755))

	_, batches := startPipeline(t, watcher.Options{
		Pattern:    "*.cs",
		Quiescence: 150 * time.Millisecond,
		Recursive:  true,
	}, dir)

	// When: writing noise alongside one real source file
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("todo"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.cs"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "Generated.cs"), []byte("x"), 0644))
	service := filepath.Join(dir, "Service.cs")
	require.NoError(t, os.WriteFile(service, []byte("class Service {}"), 0644))

	// Then: only the source file survives filtering
	batch := waitForBatch(t, batches, 3*time.Second)
	assert.Equal(t, []string{service}, batch)
}

// TestIntegration_NewDirectory_JoinsRecursiveWatch tests that a directory
// created after enable is picked up and its files produce events.
func TestIntegration_NewDirectory_JoinsRecursiveWatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: an enabled recursive pipeline
	dir := tempRoot(t)
	_, batches := startPipeline(t, watcher.Options{
		Pattern:    "*.cs",
		Quiescence: 100 * time.Millisecond,
		Recursive:  true,
	}, dir)

	// When: creating a new subdirectory and letting the watch attach
	sub := filepath.Join(dir, "Models")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(250 * time.Millisecond)

	// And: writing a matching file inside it
	file := filepath.Join(sub, "User.cs")
	require.NoError(t, os.WriteFile(file, []byte("class User {}"), 0644))

	// Then: the file reaches subscribers
	batch := waitForBatch(t, batches, 3*time.Second)
	assert.Contains(t, batch, file, "Files in new directories should be watched")
}

// TestIntegration_DisableMidWindow_DropsPendingBatch tests that disabling
// while changes are still aggregating discards them without delivery.
func TestIntegration_DisableMidWindow_DropsPendingBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: an enabled pipeline with a long quiescence window
	dir := tempRoot(t)
	m, batches := startPipeline(t, watcher.Options{
		Pattern:    "*.cs",
		Quiescence: 300 * time.Millisecond,
		Recursive:  true,
	}, dir)

	// When: a change lands and the pipeline is disabled before the flush
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Doomed.cs"), []byte("x"), 0644))
	time.Sleep(50 * time.Millisecond)
	m.Disable()

	// Then: the pending batch never arrives
	expectQuiet(t, batches, 600*time.Millisecond)
	assert.Equal(t, watcher.StateDisabled, m.State())
}

// TestIntegration_MaxWindow_BoundsContinuousEditStream tests that a file
// under constant modification still produces a batch once the aggregation
// cap elapses, even though the stream never goes quiet.
func TestIntegration_MaxWindow_BoundsContinuousEditStream(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a pipeline whose cap is shorter than the edit cadence allows
	dir := tempRoot(t)
	_, batches := startPipeline(t, watcher.Options{
		Pattern:              "*.cs",
		Quiescence:           200 * time.Millisecond,
		MaxAggregationWindow: 500 * time.Millisecond,
		Recursive:            true,
	}, dir)

	// When: a writer keeps saving faster than the quiescence window
	file := filepath.Join(dir, "Hot.cs")
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = os.WriteFile(file, []byte(time.Now().String()), 0644)
			}
		}
	}()

	// Then: the cap forces a delivery while writes are still flowing
	batch := waitForBatch(t, batches, 3*time.Second)
	close(done)
	wg.Wait()
	assert.Equal(t, []string{file}, batch)
}

// TestIntegration_BatchDrivesToastCenter tests the wiring the watch session
// uses: a delivered batch posts a toast, and the center notifies its
// subscribers.
func TestIntegration_BatchDrivesToastCenter(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a toast center with a subscriber
	center := notify.NewCenter(notify.Options{Duration: time.Minute, MaxActive: 3})
	defer center.Close()

	events := make(chan notify.Event, 8)
	unsubscribe := center.Subscribe(func(ev notify.Event) {
		events <- ev
	})
	defer unsubscribe()

	// And: a pipeline posting a toast per batch
	dir := tempRoot(t)
	m := watcher.NewManager(watcher.Options{
		Pattern:    "*.cs",
		Quiescence: 150 * time.Millisecond,
		Recursive:  true,
	})
	m.OnBatchChanged(func(paths []string) {
		center.Show(notify.LevelInfo, fmt.Sprintf("%d file(s) changed", len(paths)))
	})
	require.NoError(t, m.Enable([]string{dir}))
	t.Cleanup(m.Disable)

	// When: two files change within one window
	require.NoError(t, os.WriteFile(filepath.Join(dir, "One.cs"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Two.cs"), []byte("y"), 0644))

	// Then: the subscriber sees the shown toast for the whole batch
	select {
	case ev := <-events:
		assert.Equal(t, notify.KindShown, ev.Kind)
		assert.Equal(t, notify.LevelInfo, ev.Toast.Level)
		assert.Equal(t, "2 file(s) changed", ev.Toast.Message)
	case <-time.After(3 * time.Second):
		t.Fatal("no toast shown for the delivered batch")
	}

	// And: the toast is active in the center
	assert.Len(t, center.Active(), 1)
}

// TestIntegration_ConfigDrivenPipeline tests that settings loaded from a
// project config file steer the live pipeline.
func TestIntegration_ConfigDrivenPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a sandboxed home so no real user config interferes
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	// And: a project config narrowing the watch to Go files
	projectDir := tempRoot(t)
	projectYAML := "version: 1\nwatch:\n  pattern: \"*.go\"\n  debounce: 120ms\n  recursive: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".supertui.yaml"), []byte(projectYAML), 0644))

	cfg, err := config.Load(projectDir)
	require.NoError(t, err)

	quiescence, err := cfg.DebounceWindow()
	require.NoError(t, err)
	maxWindow, err := cfg.MaxAggregationWindow()
	require.NoError(t, err)

	// When: the pipeline runs with the loaded settings
	_, batches := startPipeline(t, watcher.Options{
		Pattern:              cfg.Watch.Pattern,
		Quiescence:           quiescence,
		MaxAggregationWindow: maxWindow,
		Recursive:            cfg.Watch.Recursive,
	}, projectDir)

	goFile := filepath.Join(projectDir, "main.go")
	require.NoError(t, os.WriteFile(goFile, []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "Program.cs"), []byte("x"), 0644))

	// Then: only the configured pattern reaches subscribers
	batch := waitForBatch(t, batches, 3*time.Second)
	assert.Equal(t, []string{goFile}, batch)
}
