package wizard

import "github.com/muurk/stepwise/internal/location"

// EventKind identifies a terminal transition.
type EventKind string

const (
	EventCancel   EventKind = "cancel"
	EventComplete EventKind = "complete"
)

// Event is passed to the OnCancel and OnComplete callbacks.
type Event struct {
	Kind EventKind
	// StepIndex is the step that was active when the transition was issued
	StepIndex int
	// Path is the terminal location that was pushed
	Path string
}

// Config is fixed for the lifetime of a wizard.
type Config struct {
	// BasePath is the prefix under which step locations are addressed.
	// Step i lives at BasePath + i + "/".
	BasePath string

	// InitialStepIndex is shown on mount. It is not clamped; callers keep it
	// within [0, stepCount-1].
	InitialStepIndex int

	// Terminal locations. No step content is rendered at either.
	CancelledPath string
	CompletedPath string

	OnCancel   func(Event)
	OnComplete func(Event)
}

// WithDefaults fills empty paths with the location package defaults.
func (c Config) WithDefaults() Config {
	if c.BasePath == "" {
		c.BasePath = location.DefaultBasePath
	}
	if c.CancelledPath == "" {
		c.CancelledPath = location.DefaultCancelledPath
	}
	if c.CompletedPath == "" {
		c.CompletedPath = location.DefaultCompletedPath
	}
	return c
}

// IsTerminal reports whether path is the cancelled or completed location.
func (c Config) IsTerminal(path string) bool {
	return path == c.CancelledPath || path == c.CompletedPath
}

// StepPath returns the location of step i.
func (c Config) StepPath(i int) string {
	return location.StepPath(c.BasePath, i)
}
