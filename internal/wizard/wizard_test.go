package wizard

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/stepwise/internal/location"
)

var threeSteps = []string{"step 1", "step 2", "step 3"}

type scrollCounter struct {
	n int
}

func (s *scrollCounter) ScrollToTop() { s.n++ }

func mount(t *testing.T, cfg Config, steps []string) (*Wizard[string], *location.History) {
	t.Helper()
	h := location.NewHistory("/")
	w := New(cfg, steps, h)
	require.NoError(t, w.Mount(context.Background()))
	t.Cleanup(w.Unmount)
	return w, h
}

func active(t *testing.T, w *Wizard[string]) string {
	t.Helper()
	content, ok := w.Active()
	require.True(t, ok, "expected step content to be rendered")
	return content
}

func TestScenarioNextFromFirstStep(t *testing.T) {
	w, _ := mount(t, Config{}, threeSteps)
	assert.Equal(t, "step 1", active(t, w))

	_, err := w.Next()
	require.NoError(t, err)
	assert.Equal(t, "step 2", active(t, w))
}

func TestScenarioPreviousFromInitialStep(t *testing.T) {
	w, h := mount(t, Config{InitialStepIndex: 1}, threeSteps)
	assert.Equal(t, "step 2", active(t, w))
	assert.Equal(t, "/1/", h.Current().Path)

	_, err := w.Previous()
	require.NoError(t, err)
	assert.Equal(t, "step 1", active(t, w))
}

func TestScenarioRestartReturnsToInitialStep(t *testing.T) {
	w, _ := mount(t, Config{InitialStepIndex: 1}, threeSteps)

	_, err := w.Next()
	require.NoError(t, err)
	assert.Equal(t, "step 3", active(t, w))

	cmd, err := w.Restart()
	require.NoError(t, err)
	assert.Equal(t, 1, cmd.Target)
	assert.Equal(t, "step 2", active(t, w))
	assert.Equal(t, 2, w.State().MaxStepReached)
}

func TestScenarioComplete(t *testing.T) {
	var events []Event
	cfg := Config{
		CompletedPath:    "/completed/",
		InitialStepIndex: 2,
		OnComplete:       func(e Event) { events = append(events, e) },
	}
	w, h := mount(t, cfg, threeSteps)

	cmd, err := w.Complete()
	require.NoError(t, err)

	assert.Equal(t, "/completed/", cmd.Path)
	assert.Equal(t, "/completed/", h.Current().Path)
	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: EventComplete, StepIndex: 2, Path: "/completed/"}, events[0])

	_, ok := w.Active()
	assert.False(t, ok, "no step content at a terminal location")
}

func TestScenarioGoToSkipsSteps(t *testing.T) {
	w, h := mount(t, Config{}, threeSteps)

	_, err := w.GoTo(2)
	require.NoError(t, err)
	assert.Equal(t, "step 3", active(t, w))

	var visited []string
	for _, l := range h.Entries() {
		visited = append(visited, l.Path)
	}
	assert.NotContains(t, visited, "/1/")
}

func TestCancel(t *testing.T) {
	calls := 0
	cfg := Config{
		CancelledPath: "/cancelled/",
		OnCancel:      func(Event) { calls++ },
	}
	w, h := mount(t, cfg, threeSteps)

	_, err := w.Cancel()
	require.NoError(t, err)

	assert.Equal(t, "/cancelled/", h.Current().Path)
	assert.Equal(t, 1, calls)
	_, ok := w.Active()
	assert.False(t, ok)
}

func TestCancelCallbackRunsBeforeFinalScrollReset(t *testing.T) {
	var order []string
	h := location.NewHistory("/")
	cfg := Config{
		OnCancel: func(Event) { order = append(order, "callback") },
	}
	w := New(cfg, threeSteps, h, WithViewport(ViewportFunc(func() {
		order = append(order, "scroll")
	})))
	require.NoError(t, w.Mount(context.Background()))
	defer w.Unmount()

	order = nil
	_, err := w.Cancel()
	require.NoError(t, err)

	// The pushed location scrolls once on synchronization, then the
	// callback runs, then the final reset.
	assert.Equal(t, []string{"scroll", "callback", "scroll"}, order)
}

func TestCallbackMayUnmount(t *testing.T) {
	h := location.NewHistory("/")
	var w *Wizard[string]
	w = New(Config{OnComplete: func(Event) { w.Unmount() }}, threeSteps, h)
	require.NoError(t, w.Mount(context.Background()))

	_, err := w.Complete()
	require.NoError(t, err)
	assert.Equal(t, PhaseUnmounted, w.Phase())

	_, err = w.Next()
	assert.ErrorIs(t, err, ErrUnmounted)
}

func TestInitialRedirectFiresWhenLocationAlreadyMatches(t *testing.T) {
	h := location.NewHistory("/1/")
	var seen []string
	h.Observe(func(l location.Location) { seen = append(seen, l.Path) })

	w := New(Config{InitialStepIndex: 1}, threeSteps, h)
	require.NoError(t, w.Mount(context.Background()))
	defer w.Unmount()

	assert.Equal(t, []string{"/1/"}, seen)
	assert.Equal(t, 2, h.Len())
}

func TestFirstRenderUsesInitialStep(t *testing.T) {
	h := location.NewHistory("/2/")
	w := New(Config{InitialStepIndex: 1}, threeSteps, h)

	state := w.State()
	assert.True(t, state.IsFirstRender)
	assert.Equal(t, 1, state.StepIndex)
	assert.Equal(t, "step 2", active(t, w))
	assert.Equal(t, PhaseInitializing, w.Phase())

	require.NoError(t, w.Mount(context.Background()))
	defer w.Unmount()

	state = w.State()
	assert.False(t, state.IsFirstRender)
	assert.Equal(t, 1, state.StepIndex)
	assert.Equal(t, PhaseSynchronized, w.Phase())
}

func TestFirstRenderAtTerminalLocationRendersNothing(t *testing.T) {
	h := location.NewHistory("/")
	w := New(Config{}, threeSteps, h)

	_, ok := w.Active()
	assert.False(t, ok, "the default cancelled path is /")

	require.NoError(t, w.Mount(context.Background()))
	defer w.Unmount()
	assert.Equal(t, "step 1", active(t, w))
}

func TestMountLifecycleErrors(t *testing.T) {
	h := location.NewHistory("/")
	w := New(Config{}, threeSteps, h)

	_, err := w.Next()
	assert.ErrorIs(t, err, ErrNotMounted)

	require.NoError(t, w.Mount(context.Background()))
	assert.ErrorIs(t, w.Mount(context.Background()), ErrAlreadyMounted)

	w.Unmount()
	w.Unmount()
	assert.ErrorIs(t, w.Mount(context.Background()), ErrUnmounted)

	_, err = w.Cancel()
	assert.ErrorIs(t, err, ErrUnmounted)
}

func TestUnmountStopsSynchronization(t *testing.T) {
	w, h := mount(t, Config{}, threeSteps)
	w.Unmount()

	h.Push("/2/")
	assert.Equal(t, 0, w.State().StepIndex)
	_, ok := w.Active()
	assert.False(t, ok)
}

func TestContextCancellationUnmounts(t *testing.T) {
	h := location.NewHistory("/")
	w := New(Config{}, threeSteps, h)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Mount(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		return w.Phase() == PhaseUnmounted
	}, time.Second, 5*time.Millisecond)
}

func TestHistoryBackForwardResynchronizes(t *testing.T) {
	w, h := mount(t, Config{}, threeSteps)

	_, err := w.Next()
	require.NoError(t, err)
	_, err = w.Next()
	require.NoError(t, err)

	require.True(t, h.Back())
	assert.Equal(t, "step 2", active(t, w))
	assert.Equal(t, 2, w.State().MaxStepReached)

	require.True(t, h.Forward())
	assert.Equal(t, "step 3", active(t, w))
}

func TestDirectLocationEntry(t *testing.T) {
	w, h := mount(t, Config{BasePath: "/signup/"}, threeSteps)

	h.Push("/signup/abc/")
	assert.Equal(t, 0, w.State().StepIndex)

	h.Push("/signup/2abc/")
	assert.Equal(t, 2, w.State().StepIndex, "leading digits name the step")
	assert.Equal(t, "step 3", active(t, w))

	h.Push("/signup/9/")
	assert.Equal(t, 9, w.State().StepIndex, "out-of-range indexes pass through")
	_, ok := w.Active()
	assert.False(t, ok, "out-of-range step renders nothing")
	assert.Equal(t, 9, w.State().MaxStepReached)
}

func TestEveryTransitionScrollsToTop(t *testing.T) {
	h := location.NewHistory("/")
	sc := &scrollCounter{}
	w := New(Config{}, threeSteps, h, WithViewport(sc))
	require.NoError(t, w.Mount(context.Background()))
	defer w.Unmount()

	assert.Equal(t, 1, sc.n, "mount resets scroll once")

	_, _ = w.Next()
	_, _ = w.Previous()
	h.Back()
	assert.Equal(t, 4, sc.n)
}

func TestOnChange(t *testing.T) {
	w, _ := mount(t, Config{}, threeSteps)

	var snaps []Snapshot
	stop := w.OnChange(func(s Snapshot) { snaps = append(snaps, s) })

	_, _ = w.Next()
	stop()
	_, _ = w.Next()

	require.Len(t, snaps, 1)
	assert.Equal(t, 1, snaps[0].StepIndex)
	assert.Equal(t, 3, snaps[0].StepCount)
	assert.Equal(t, "/1/", snaps[0].Path)
}

func TestStepsAreCopied(t *testing.T) {
	steps := []string{"a", "b"}
	w := New(Config{}, steps, location.NewHistory("/"))
	steps[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, w.Steps())
	assert.Equal(t, 2, w.StepCount())
}

func TestEmptyWizard(t *testing.T) {
	w, _ := mount(t, Config{}, nil)

	cmd, err := w.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, cmd.Target)
	_, ok := w.Active()
	assert.False(t, ok)
}

func TestNavigationProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		count := rng.Intn(6) + 1
		steps := make([]string, count)
		initial := rng.Intn(count)

		w, _ := mount(t, Config{InitialStepIndex: initial}, steps)
		require.Equal(t, initial, w.State().StepIndex)

		prevMax := w.State().MaxStepReached
		for i := 0; i < 40; i++ {
			switch rng.Intn(4) {
			case 0:
				_, _ = w.Next()
			case 1:
				_, _ = w.Previous()
			case 2:
				_, _ = w.GoTo(rng.Intn(count))
			case 3:
				_, _ = w.Restart()
				require.Equal(t, initial, w.State().StepIndex)
			}

			s := w.State()
			require.GreaterOrEqual(t, s.StepIndex, 0)
			require.LessOrEqual(t, s.StepIndex, count-1)
			require.GreaterOrEqual(t, s.MaxStepReached, prevMax)
			prevMax = s.MaxStepReached
		}
		w.Unmount()
	}
}
