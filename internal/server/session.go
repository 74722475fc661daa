package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/muurk/stepwise/internal/config"
	"github.com/muurk/stepwise/internal/location"
	"github.com/muurk/stepwise/internal/logging"
	"github.com/muurk/stepwise/internal/wizard"
)

// LocationEvent is streamed to /_wizard/events subscribers on every
// location change of a session
type LocationEvent struct {
	Path           string `json:"path"`
	StepIndex      int    `json:"stepIndex"`
	MaxStepReached int    `json:"maxStepReached"`
}

// subscriberBuffer bounds how far a slow WebSocket client may fall behind
// before events are dropped
const subscriberBuffer = 16

// session is one browser: its own location history and one mounted wizard.
// mu serializes requests of the same browser.
type session struct {
	id      string
	def     *config.Definition
	history *location.History

	mu        sync.Mutex
	wizard    *wizard.Wizard[config.Step]
	cancel    context.CancelFunc
	lastEvent *wizard.Event

	subsMu sync.Mutex
	subs   map[chan LocationEvent]struct{}

	// lastUsed is refreshed on every lookup and read by the idle sweeper
	lastUsed atomic.Time
}

func newSession(id string, def *config.Definition, entry string) *session {
	s := &session{
		id:      id,
		def:     def,
		history: location.NewHistory(entry),
		subs:    make(map[chan LocationEvent]struct{}),
	}
	s.touch(time.Now())
	return s
}

func (s *session) touch(now time.Time) {
	s.lastUsed.Store(now)
}

// idle reports whether the session has gone unused for longer than ttl.
// A session with an open event stream is never idle.
func (s *session) idle(now time.Time, ttl time.Duration) bool {
	return s.subscribers() == 0 && now.Sub(s.lastUsed.Load()) > ttl
}

// mount replaces the session's wizard with a fresh mount over the same
// history. Callers hold s.mu.
func (s *session) mount(ctx context.Context) error {
	if s.wizard != nil {
		s.wizard.Unmount()
		s.cancel()
	}

	cfg := s.def.WizardConfig()
	cfg.OnCancel = s.record
	cfg.OnComplete = s.record

	mctx, cancel := context.WithCancel(ctx)
	w := wizard.New(cfg, s.def.Steps, s.history)
	// Registered before Mount so the initial redirect is streamed too
	w.OnChange(s.broadcast)

	if err := w.Mount(mctx); err != nil {
		cancel()
		return fmt.Errorf("failed to mount wizard: %w", err)
	}

	s.wizard = w
	s.cancel = cancel
	s.lastEvent = nil

	logging.Debug("Session mounted wizard",
		zap.String("session", s.id),
		zap.String("path", s.history.Current().Path),
	)
	return nil
}

// unmount ends the session's wizard
func (s *session) unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard != nil {
		s.wizard.Unmount()
		s.cancel()
	}
}

// record is the OnCancel/OnComplete callback. It runs inside a trigger, so
// s.mu is already held by the request.
func (s *session) record(e wizard.Event) {
	s.lastEvent = &e
	logging.Info("Wizard finished",
		zap.String("session", s.id),
		zap.String("outcome", string(e.Kind)),
		zap.Int("step_index", e.StepIndex),
	)
}

// currentEvent describes the session's location now. Callers hold s.mu.
func (s *session) currentEvent() LocationEvent {
	return eventFor(s.wizard.Snapshot(), s.history.Current().Path)
}

func eventFor(snap wizard.Snapshot, path string) LocationEvent {
	return LocationEvent{
		Path:           path,
		StepIndex:      snap.StepIndex,
		MaxStepReached: snap.MaxStepReached,
	}
}

// broadcast fans a wizard change out to every subscriber without blocking
func (s *session) broadcast(snap wizard.Snapshot) {
	ev := eventFor(snap, snap.Path)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
			logging.Debug("Dropping location event for slow subscriber",
				zap.String("session", s.id),
				zap.String("path", ev.Path),
			)
		}
	}
}

// subscribe registers a channel for location events
func (s *session) subscribe() (<-chan LocationEvent, func()) {
	ch := make(chan LocationEvent, subscriberBuffer)

	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, ch)
			s.subsMu.Unlock()
		})
	}
}

// subscribers returns the number of active event subscribers
func (s *session) subscribers() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}
