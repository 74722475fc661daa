package wizard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/stepwise/internal/location"
	"github.com/muurk/stepwise/internal/logging"
)

// Phase is the synchronization state of a wizard.
type Phase int

const (
	// PhaseInitializing lasts until the initial redirect has been issued
	PhaseInitializing Phase = iota
	// PhaseSynchronized folds every location change back into State
	PhaseSynchronized
	// PhaseUnmounted ignores all further location changes
	PhaseUnmounted
)

// String returns a human-readable name for the phase
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseSynchronized:
		return "synchronized"
	case PhaseUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// routeRegistrar is implemented by location services that resolve Param
// through registered routes, such as location.History.
type routeRegistrar interface {
	AddRoute(p *location.Pattern)
}

// Wizard tracks the active step of a fixed sequence of steps and keeps it in
// sync with a location service.
//
// A Wizard is single-use: Mount once, Unmount once. Hosts that serve
// concurrent callers serialize access to a wizard themselves.
type Wizard[S any] struct {
	cfg      Config
	steps    []S
	loc      location.Service
	viewport Viewport

	mu       sync.Mutex
	phase    Phase
	mounting bool
	state    State
	stop     func()
	done     chan struct{}

	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Snapshot)
}

// Option configures a Wizard.
type Option func(*options)

type options struct {
	viewport Viewport
}

// WithViewport sets the scroll collaborator. Defaults to NopViewport.
func WithViewport(v Viewport) Option {
	return func(o *options) {
		if v != nil {
			o.viewport = v
		}
	}
}

// New creates an unmounted wizard over steps. The slice is copied.
func New[S any](cfg Config, steps []S, loc location.Service, opts ...Option) *Wizard[S] {
	o := options{viewport: NopViewport}
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.WithDefaults()
	if r, ok := loc.(routeRegistrar); ok {
		r.AddRoute(location.StepRoute(cfg.BasePath))
	}

	owned := make([]S, len(steps))
	copy(owned, steps)

	return &Wizard[S]{
		cfg:      cfg,
		steps:    owned,
		loc:      loc,
		viewport: o.viewport,
		phase:    PhaseInitializing,
		state: State{
			StepIndex:      cfg.InitialStepIndex,
			MaxStepReached: cfg.InitialStepIndex,
			IsFirstRender:  true,
		},
		done: make(chan struct{}),
	}
}

// Mount runs the one-shot initial redirect and starts observing the
// location. The redirect is pushed even if the location already matches.
// The wizard unmounts itself when ctx is done.
func (w *Wizard[S]) Mount(ctx context.Context) error {
	w.mu.Lock()
	switch w.phase {
	case PhaseSynchronized:
		w.mu.Unlock()
		return ErrAlreadyMounted
	case PhaseUnmounted:
		w.mu.Unlock()
		return ErrUnmounted
	}
	if w.mounting {
		w.mu.Unlock()
		return ErrAlreadyMounted
	}
	w.mounting = true
	w.mu.Unlock()

	path := w.cfg.StepPath(w.cfg.InitialStepIndex)
	logging.LogNavigation(string(CommandInitial), w.cfg.InitialStepIndex, w.cfg.InitialStepIndex, path)
	w.loc.Push(path)

	w.mu.Lock()
	w.phase = PhaseSynchronized
	w.state.IsFirstRender = false
	w.mu.Unlock()

	stop := w.loc.Observe(w.synchronize)
	w.mu.Lock()
	w.stop = stop
	w.mu.Unlock()

	w.synchronize(w.loc.Current())

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				w.Unmount()
			case <-w.done:
			}
		}()
	}

	return nil
}

// Unmount stops all reaction to location changes. It is safe to call more
// than once and before Mount.
func (w *Wizard[S]) Unmount() {
	w.mu.Lock()
	if w.phase == PhaseUnmounted {
		w.mu.Unlock()
		return
	}
	w.phase = PhaseUnmounted
	stop := w.stop
	w.stop = nil
	w.listeners = nil
	close(w.done)
	w.mu.Unlock()

	if stop != nil {
		stop()
	}
	logging.Debug("Wizard unmounted", zap.String("base_path", w.cfg.BasePath))
}

// synchronize folds a location change into State and resets the viewport.
func (w *Wizard[S]) synchronize(loc location.Location) {
	segment, _ := w.loc.Param(location.StepIndexParam)

	w.mu.Lock()
	if w.phase != PhaseSynchronized {
		w.mu.Unlock()
		return
	}
	w.state.StepIndex = DeriveStepIndex(segment, w.state.IsFirstRender, w.cfg.InitialStepIndex)
	w.state.MaxStepReached = ComputeMaxStepReached(w.state.MaxStepReached, w.state.StepIndex)
	w.state.Path = loc.Path
	state := w.state
	listeners := make([]listener, len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	logging.LogLocationChange(loc.Path, state.StepIndex, state.MaxStepReached)
	w.viewport.ScrollToTop()

	snap := w.Snapshot()
	for _, l := range listeners {
		l.fn(snap)
	}
}

// OnChange registers fn to run after every synchronized location change.
// Listeners are dropped on Unmount.
func (w *Wizard[S]) OnChange(fn func(Snapshot)) (cancel func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners = append(w.listeners, listener{id: id, fn: fn})
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, l := range w.listeners {
			if l.id == id {
				w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
				return
			}
		}
	}
}

// Phase returns the current synchronization phase.
func (w *Wizard[S]) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// State returns the current derived state.
func (w *Wizard[S]) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Config returns the wizard configuration with defaults applied.
func (w *Wizard[S]) Config() Config {
	return w.cfg
}

// StepCount returns the number of steps.
func (w *Wizard[S]) StepCount() int {
	return len(w.steps)
}

// Steps returns a copy of the step sequence.
func (w *Wizard[S]) Steps() []S {
	out := make([]S, len(w.steps))
	copy(out, w.steps)
	return out
}

// Snapshot returns state, configuration and step count together.
func (w *Wizard[S]) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:     w.state,
		Config:    w.cfg,
		StepCount: len(w.steps),
		Phase:     w.phase,
	}
}

// Active returns the content of the active step. It returns false at a
// terminal location, once unmounted, and for an out-of-range step index.
func (w *Wizard[S]) Active() (S, bool) {
	var zero S

	w.mu.Lock()
	phase := w.phase
	idx := w.state.StepIndex
	w.mu.Unlock()

	if phase == PhaseUnmounted {
		return zero, false
	}
	if w.cfg.IsTerminal(w.loc.Current().Path) {
		return zero, false
	}
	if idx < 0 || idx >= len(w.steps) {
		return zero, false
	}
	return w.steps[idx], true
}

// Previous moves to the previous step, stopping at the first.
func (w *Wizard[S]) Previous() (Command, error) {
	return w.goToStep(CommandPrevious, func(s State) int {
		return PreviousTarget(s.StepIndex)
	})
}

// Next moves to the next step, stopping at the last.
func (w *Wizard[S]) Next() (Command, error) {
	return w.goToStep(CommandNext, func(s State) int {
		return NextTarget(s.StepIndex, len(w.steps))
	})
}

// GoTo moves to step i. i is not clamped.
func (w *Wizard[S]) GoTo(i int) (Command, error) {
	return w.goToStep(CommandGoTo, func(State) int { return i })
}

// Restart returns to the initial step.
func (w *Wizard[S]) Restart() (Command, error) {
	return w.goToStep(CommandRestart, func(State) int { return w.cfg.InitialStepIndex })
}

// Cancel pushes the cancelled location, invokes OnCancel, then resets the
// viewport.
func (w *Wizard[S]) Cancel() (Command, error) {
	return w.exit(CommandCancel, EventCancel, w.cfg.CancelledPath, w.cfg.OnCancel)
}

// Complete pushes the completed location, invokes OnComplete, then resets
// the viewport.
func (w *Wizard[S]) Complete() (Command, error) {
	return w.exit(CommandComplete, EventComplete, w.cfg.CompletedPath, w.cfg.OnComplete)
}

func (w *Wizard[S]) goToStep(kind CommandKind, target func(State) int) (Command, error) {
	state, err := w.mountedState()
	if err != nil {
		return Command{}, err
	}

	to := target(state)
	cmd := Command{Kind: kind, Target: to, Path: w.cfg.StepPath(to)}
	logging.LogNavigation(string(kind), state.StepIndex, to, cmd.Path)
	w.loc.Push(cmd.Path)
	return cmd, nil
}

func (w *Wizard[S]) exit(kind CommandKind, ev EventKind, path string, callback func(Event)) (Command, error) {
	state, err := w.mountedState()
	if err != nil {
		return Command{}, err
	}

	cmd := Command{Kind: kind, Target: -1, Path: path}
	logging.LogNavigation(string(kind), state.StepIndex, -1, path)
	w.loc.Push(path)

	if callback != nil {
		callback(Event{Kind: ev, StepIndex: state.StepIndex, Path: path})
	}
	w.viewport.ScrollToTop()
	return cmd, nil
}

func (w *Wizard[S]) mountedState() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.phase {
	case PhaseInitializing:
		return State{}, ErrNotMounted
	case PhaseUnmounted:
		return State{}, ErrUnmounted
	}
	return w.state, nil
}
