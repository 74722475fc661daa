package wizard

import "context"

// Snapshot is the read-only view of a wizard handed to step content.
type Snapshot struct {
	State
	Config    Config
	StepCount int
	Phase     Phase
}

// CanVisit reports whether step i has already been reached in this mount.
func (s Snapshot) CanVisit(i int) bool {
	return i >= 0 && i <= s.MaxStepReached
}

// IsFirst reports whether the active step is the first one.
func (s Snapshot) IsFirst() bool {
	return s.StepIndex == 0
}

// IsLast reports whether the active step is the last one.
func (s Snapshot) IsLast() bool {
	return s.StepIndex == s.StepCount-1
}

// Navigator is the wizard surface exposed to step content: its state plus
// the six navigation triggers.
type Navigator interface {
	Snapshot() Snapshot
	Previous() (Command, error)
	Next() (Command, error)
	GoTo(i int) (Command, error)
	Restart() (Command, error)
	Cancel() (Command, error)
	Complete() (Command, error)
}

var _ Navigator = (*Wizard[struct{}])(nil)

type contextKey struct{}

// NewContext returns a child of ctx carrying nav. A nested call shadows the
// enclosing wizard, so content always sees its nearest wizard.
func NewContext(ctx context.Context, nav Navigator) context.Context {
	return context.WithValue(ctx, contextKey{}, nav)
}

// FromContext returns the nearest wizard carried by ctx.
func FromContext(ctx context.Context) (Navigator, bool) {
	nav, ok := ctx.Value(contextKey{}).(Navigator)
	return nav, ok && nav != nil
}
