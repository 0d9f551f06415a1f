package notify

import "time"

// Level classifies a toast for presentation.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Toast is one notification. IDs are assigned by the center, start at 1,
// and are never reused.
type Toast struct {
	ID        int       `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// EventKind says what happened to a toast.
type EventKind string

const (
	KindShown     EventKind = "shown"
	KindDismissed EventKind = "dismissed"
)

// Event is delivered to subscribers when a toast appears or goes away.
type Event struct {
	Kind  EventKind `json:"kind"`
	Toast Toast     `json:"toast"`
}

// Options configures a Center.
type Options struct {
	// Duration is how long a toast stays active before auto-dismiss.
	Duration time.Duration

	// MaxActive caps the number of simultaneously active toasts. Showing
	// one more dismisses the oldest.
	MaxActive int
}

// DefaultOptions returns the standard toast configuration.
func DefaultOptions() Options {
	return Options{
		Duration:  4 * time.Second,
		MaxActive: 5,
	}
}

// WithDefaults fills unset fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.Duration <= 0 {
		o.Duration = defaults.Duration
	}
	if o.MaxActive <= 0 {
		o.MaxActive = defaults.MaxActive
	}
	return o
}
