package watcher

import (
	"fmt"
	"time"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away from its path.
	// The new name, if it stays inside a watched tree, arrives as a separate
	// create event.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a single raw file system event after filtering.
type FileEvent struct {
	// Path is the absolute path to the file or directory.
	Path string

	// Operation is the type of file system operation.
	Operation Operation

	// IsDir indicates if the event is for a directory.
	IsDir bool

	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// State is the lifecycle state of a Manager.
type State int

const (
	// StateDisabled means no watches are active and no events flow.
	StateDisabled State = iota
	// StateEnabled means watches are active and events are being aggregated.
	StateEnabled
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateDisabled:
		return "DISABLED"
	case StateEnabled:
		return "ENABLED"
	default:
		return "UNKNOWN"
	}
}

// Stats is a point-in-time diagnostic snapshot of the pipeline.
type Stats struct {
	// Enabled reports whether watching is active.
	Enabled bool `json:"enabled"`

	// WatchedPaths is the number of active watch subscriptions.
	WatchedPaths int `json:"watched_paths"`

	// PendingChanges is the number of distinct paths waiting for the
	// current quiescence window to elapse.
	PendingChanges int `json:"pending_changes"`
}

// Options configures the watch pipeline.
type Options struct {
	// Pattern is the file-name glob applied to events.
	// Default: "*.cs"
	Pattern string

	// Quiescence is how long the event stream must stay quiet before a
	// pending batch is flushed. Every accepted event rearms the full window.
	// Default: 500ms
	Quiescence time.Duration

	// MaxAggregationWindow caps how far a continuous stream of events can
	// push a flush into the future. Zero means no cap: a file under constant
	// modification keeps rearming the window until writers go quiet.
	MaxAggregationWindow time.Duration

	// Recursive watches subdirectories of each root.
	Recursive bool
}

// DefaultOptions returns the default pipeline options.
func DefaultOptions() Options {
	return Options{
		Pattern:              "*.cs",
		Quiescence:           500 * time.Millisecond,
		MaxAggregationWindow: 0,
		Recursive:            true,
	}
}

// Validate validates the options and returns an error if invalid.
func (o Options) Validate() error {
	if o.Quiescence < 0 {
		return fmt.Errorf("quiescence must be non-negative, got %s", o.Quiescence)
	}
	if o.MaxAggregationWindow < 0 {
		return fmt.Errorf("max aggregation window must be non-negative, got %s", o.MaxAggregationWindow)
	}
	if o.MaxAggregationWindow != 0 && o.MaxAggregationWindow < o.Quiescence {
		return fmt.Errorf("max aggregation window (%s) must be at least the quiescence window (%s)",
			o.MaxAggregationWindow, o.Quiescence)
	}
	return nil
}

// WithDefaults returns options with defaults applied for zero values.
// Recursive is left as given; use DefaultOptions as the starting point
// when recursion is wanted.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.Pattern == "" {
		o.Pattern = defaults.Pattern
	}
	if o.Quiescence == 0 {
		o.Quiescence = defaults.Quiescence
	}
	return o
}
