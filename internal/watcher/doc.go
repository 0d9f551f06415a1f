// Package watcher implements the file-change watch-and-aggregate pipeline:
// directory trees are watched for changes, raw events are filtered for
// noise on their delivery goroutines, surviving paths are collected into a
// pending set, and once the stream has stayed quiet for a quiescence
// window the set is flushed to subscribers as a single deduplicated batch.
//
// The pipeline is built from four pieces owned by a Manager:
//   - ShouldIgnore drops dotfiles, editor temp files, IDE scratch state,
//     and build output before any shared state is touched.
//   - Registry holds one watch subscription (an fsnotify handle plus its
//     forwarding goroutine) per root.
//   - Debouncer owns the pending path set and the rearm-able quiescence
//     timer.
//   - Dispatcher fans flushed batches out to per-path and whole-batch
//     subscribers with per-subscriber panic isolation.
//
// Usage:
//
//	m := watcher.NewManager(watcher.DefaultOptions())
//	m.OnBatchChanged(func(paths []string) {
//	    // refresh, rebuild, notify...
//	})
//	if err := m.Enable([]string{"/path/to/project"}); err != nil {
//	    return err
//	}
//	defer m.Disable()
//
// Enable and Disable are safe to call concurrently with live event
// delivery. Disable cancels any armed flush before releasing watch
// handles; a delivery already in flight finishes, but no new flush fires
// afterwards.
package watcher
