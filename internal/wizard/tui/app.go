package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/stepwise/internal/config"
	"github.com/muurk/stepwise/internal/location"
	"github.com/muurk/stepwise/internal/logging"
	"github.com/muurk/stepwise/internal/wizard"
)

// Screen represents what the application is currently showing
type Screen string

const (
	ScreenStep      Screen = "step"
	ScreenCancelled Screen = "cancelled"
	ScreenCompleted Screen = "completed"
	// ScreenNoContent is shown for a step index without content
	ScreenNoContent Screen = "no-content"
)

// Outcome is how a run ended
type Outcome string

const (
	OutcomeQuit      Outcome = "quit"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeCompleted Outcome = "completed"
)

// Result is returned by Run
type Result struct {
	Outcome        Outcome
	StepIndex      int
	MaxStepReached int
	Path           string
}

// Options configures the terminal wizard
type Options struct {
	// Renderer renders step bodies. Defaults to glamour markdown.
	Renderer Renderer
	// StartPath is the location before the wizard mounts. Defaults to "/".
	StartPath string
}

// stepKeyMap defines key bindings while a step is shown
type stepKeyMap struct {
	Next     key.Binding
	Previous key.Binding
	GoTo     key.Binding
	Restart  key.Binding
	Cancel   key.Binding
	Complete key.Binding
	Back     key.Binding
	Forward  key.Binding
	Scroll   key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k stepKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Next, k.Complete, k.Restart, k.Cancel, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k stepKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Previous, k.Next, k.GoTo, k.Restart},
		{k.Complete, k.Cancel, k.Back, k.Forward},
		{k.Scroll, k.Quit},
	}
}

// terminalKeyMap defines key bindings on the cancelled/completed screens
type terminalKeyMap struct {
	Start   key.Binding
	Back    key.Binding
	Forward key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k terminalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Back, k.Forward, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k terminalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Start, k.Back, k.Forward, k.Quit}}
}

func newStepKeyMap() stepKeyMap {
	return stepKeyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→/n", "next"),
		),
		Previous: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←/p", "previous"),
		),
		GoTo: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "go to step"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "c"),
			key.WithHelp("esc/c", "cancel"),
		),
		Complete: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue/complete"),
		),
		Back: key.NewBinding(
			key.WithKeys("alt+left", "["),
			key.WithHelp("[", "history back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("alt+right", "]"),
			key.WithHelp("]", "history forward"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("up", "down", "pgup", "pgdown"),
			key.WithHelp("↑/↓", "scroll"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func newTerminalKeyMap() terminalKeyMap {
	return terminalKeyMap{
		Start: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "start again"),
		),
		Back: key.NewBinding(
			key.WithKeys("alt+left", "["),
			key.WithHelp("[", "history back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("alt+right", "]"),
			key.WithHelp("]", "history forward"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// scrollReset is the wizard's Viewport. Resets are applied to the bubbles
// viewport on the next content refresh.
type scrollReset struct {
	pending bool
}

func (s *scrollReset) ScrollToTop() { s.pending = true }

// session is one mount of the wizard. It lives behind a pointer so wizard
// callbacks can reach it from the value-receiver model.
type session struct {
	wizard    *wizard.Wizard[config.Step]
	lastEvent *wizard.Event
	cancel    context.CancelFunc
}

// AppModel is the top-level model for the terminal wizard
type AppModel struct {
	def      *config.Definition
	history  *location.History
	scroll   *scrollReset
	session  *session
	renderer Renderer
	ctx      context.Context

	Viewport     viewport.Model
	Help         help.Model
	StepKeys     stepKeyMap
	TerminalKeys terminalKeyMap

	Width  int
	Height int

	LastError error
	quitting  bool
}

// NewAppModel creates the model and mounts the wizard
func NewAppModel(ctx context.Context, def *config.Definition, opts Options) (AppModel, error) {
	if opts.Renderer == nil {
		opts.Renderer = renderMarkdown
	}
	if opts.StartPath == "" {
		opts.StartPath = "/"
	}

	width, height := GetTerminalSize()
	m := AppModel{
		def:          def,
		history:      location.NewHistory(opts.StartPath),
		scroll:       &scrollReset{},
		renderer:     opts.Renderer,
		ctx:          ctx,
		Viewport:     viewport.New(width-4, max(height-chromeHeight, 1)),
		Help:         help.New(),
		StepKeys:     newStepKeyMap(),
		TerminalKeys: newTerminalKeyMap(),
		Width:        width,
		Height:       height,
	}

	if err := m.mount(); err != nil {
		return AppModel{}, err
	}
	m.refreshContent()
	return m, nil
}

// mount starts a fresh wizard mount over the shared history.
func (m *AppModel) mount() error {
	if m.session != nil {
		m.session.wizard.Unmount()
		m.session.cancel()
	}

	s := &session{}
	cfg := m.def.WizardConfig()
	cfg.OnCancel = func(e wizard.Event) {
		s.lastEvent = &e
		logging.Info("Wizard cancelled", zap.Int("step_index", e.StepIndex))
	}
	cfg.OnComplete = func(e wizard.Event) {
		s.lastEvent = &e
		logging.Info("Wizard completed", zap.Int("step_index", e.StepIndex))
	}

	ctx, cancel := context.WithCancel(m.ctx)
	s.cancel = cancel
	s.wizard = wizard.New(cfg, m.def.Steps, m.history, wizard.WithViewport(m.scroll))
	if err := s.wizard.Mount(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to mount wizard: %w", err)
	}

	m.session = s
	return nil
}

// Close unmounts the wizard
func (m AppModel) Close() {
	if m.session != nil {
		m.session.wizard.Unmount()
		m.session.cancel()
	}
}

// Wizard returns the mounted wizard
func (m AppModel) Wizard() *wizard.Wizard[config.Step] {
	return m.session.wizard
}

// History returns the location history
func (m AppModel) History() *location.History {
	return m.history
}

// Result summarizes the current state as a run result
func (m AppModel) Result() Result {
	snap := m.session.wizard.Snapshot()
	r := Result{
		Outcome:        OutcomeQuit,
		StepIndex:      snap.StepIndex,
		MaxStepReached: snap.MaxStepReached,
		Path:           m.history.Current().Path,
	}
	switch m.CurrentScreen() {
	case ScreenCancelled:
		r.Outcome = OutcomeCancelled
	case ScreenCompleted:
		r.Outcome = OutcomeCompleted
	}
	return r
}

// CurrentScreen derives the screen from the wizard and the location
func (m AppModel) CurrentScreen() Screen {
	if _, ok := m.session.wizard.Active(); ok {
		return ScreenStep
	}

	cfg := m.session.wizard.Config()
	path := m.history.Current().Path
	switch {
	case path == cfg.CompletedPath && path == cfg.CancelledPath:
		// Both outcomes share a location, the last event tells them apart
		if e := m.session.lastEvent; e != nil && e.Kind == wizard.EventCancel {
			return ScreenCancelled
		}
		return ScreenCompleted
	case path == cfg.CompletedPath:
		return ScreenCompleted
	case path == cfg.CancelledPath:
		return ScreenCancelled
	default:
		return ScreenNoContent
	}
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update handles all messages and routes them to the current screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Viewport.Width = max(msg.Width-6, 1)
		m.Viewport.Height = max(msg.Height-chromeHeight, 1)
		m.Help.Width = msg.Width
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

		var handled bool
		var cmd tea.Cmd
		if m.CurrentScreen() == ScreenCancelled || m.CurrentScreen() == ScreenCompleted {
			handled, cmd = m.handleTerminalKey(msg)
		} else {
			handled, cmd = m.handleStepKey(msg)
		}
		if handled {
			m.refreshContent()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// handleStepKey maps keys to navigation triggers
func (m *AppModel) handleStepKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	w := m.session.wizard
	var err error

	switch {
	case key.Matches(msg, m.StepKeys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.StepKeys.Back):
		m.history.Back()
	case key.Matches(msg, m.StepKeys.Forward):
		m.history.Forward()
	case key.Matches(msg, m.StepKeys.Next):
		_, err = w.Next()
	case key.Matches(msg, m.StepKeys.Previous):
		_, err = w.Previous()
	case key.Matches(msg, m.StepKeys.GoTo):
		_, err = w.GoTo(int(msg.Runes[0] - '1'))
	case key.Matches(msg, m.StepKeys.Restart):
		_, err = w.Restart()
	case key.Matches(msg, m.StepKeys.Cancel):
		_, err = w.Cancel()
	case key.Matches(msg, m.StepKeys.Complete):
		if w.Snapshot().IsLast() {
			_, err = w.Complete()
		} else {
			_, err = w.Next()
		}
	default:
		return false, nil
	}

	m.LastError = err
	return true, nil
}

// handleTerminalKey handles keys on the cancelled/completed screens
func (m *AppModel) handleTerminalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.TerminalKeys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.TerminalKeys.Start):
		m.LastError = m.mount()
	case key.Matches(msg, m.TerminalKeys.Back):
		m.history.Back()
	case key.Matches(msg, m.TerminalKeys.Forward):
		m.history.Forward()
	default:
		return false, nil
	}
	return true, nil
}

// refreshContent re-renders the active step into the viewport and applies
// a pending scroll reset
func (m *AppModel) refreshContent() {
	if step, ok := m.session.wizard.Active(); ok {
		body := step.Body
		if body == "" {
			body = "_No content._"
		}
		m.Viewport.SetContent(m.renderer(body, m.Viewport.Width))
	} else {
		m.Viewport.SetContent("")
	}

	if m.scroll.pending {
		m.Viewport.GotoTop()
		m.scroll.pending = false
	}
}

// View renders the current screen
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	header := BuildHeaderContent(m.def.Name, m.history.Current().Path)

	var content, footer string
	switch m.CurrentScreen() {
	case ScreenStep:
		content = m.buildStepContent()
		footer = m.Help.View(m.StepKeys)
	case ScreenNoContent:
		content = m.buildNoContent()
		footer = m.Help.View(m.StepKeys)
	case ScreenCancelled:
		content = m.buildTerminalContent(WarningBoxStyle, "Wizard cancelled")
		footer = m.Help.View(m.TerminalKeys)
	case ScreenCompleted:
		content = m.buildTerminalContent(SuccessBoxStyle, "Wizard completed")
		footer = m.Help.View(m.TerminalKeys)
	}

	return RenderApplicationContainer(header, content, footer, m.Width, m.Height)
}

// buildStepContent renders the progress line, the step title and the body
func (m AppModel) buildStepContent() string {
	step, _ := m.session.wizard.Active()

	var b strings.Builder
	b.WriteString(m.renderProgress())
	b.WriteString("\n\n")
	b.WriteString(RenderTitle(step.Title))
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	if m.LastError != nil {
		b.WriteString("\n")
		b.WriteString(RenderSubtitle(m.LastError.Error()))
	}
	return b.String()
}

// renderProgress renders one marker per step: the active step, steps
// already reached and steps not reached yet
func (m AppModel) renderProgress() string {
	snap := m.session.wizard.Snapshot()
	markers := make([]string, 0, len(m.def.Steps))

	for i, step := range m.def.Steps {
		label := fmt.Sprintf("%d %s", i+1, step.Title)
		switch {
		case i == snap.StepIndex:
			markers = append(markers, ActiveStepStyle.Render(label))
		case snap.CanVisit(i):
			markers = append(markers, ReachedStepStyle.Render(label))
		default:
			markers = append(markers, PendingStepStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, markers...)
}

// buildNoContent is shown when the location names a step that does not exist
func (m AppModel) buildNoContent() string {
	snap := m.session.wizard.Snapshot()

	var b strings.Builder
	b.WriteString(m.renderProgress())
	b.WriteString("\n\n")
	b.WriteString(RenderSubtitle(fmt.Sprintf("There is no step %d in this wizard.", snap.StepIndex+1)))
	b.WriteString("\n")
	return b.String()
}

// buildTerminalContent renders the cancelled/completed destination
func (m AppModel) buildTerminalContent(style lipgloss.Style, title string) string {
	snap := m.session.wizard.Snapshot()

	var b strings.Builder
	b.WriteString(style.Render(title))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Furthest step reached: %d of %d\n", snap.MaxStepReached+1, snap.StepCount))
	if e := m.session.lastEvent; e != nil {
		b.WriteString(fmt.Sprintf("Left from step %d\n", e.StepIndex+1))
	}
	return b.String()
}

// Run starts the terminal wizard and blocks until the user quits
func Run(ctx context.Context, def *config.Definition, opts Options) (Result, error) {
	m, err := NewAppModel(ctx, def, opts)
	if err != nil {
		return Result{}, err
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()

	fm, ok := final.(AppModel)
	if !ok {
		m.Close()
		return Result{}, fmt.Errorf("unexpected final model %T", final)
	}
	defer fm.Close()

	if err != nil {
		return fm.Result(), fmt.Errorf("wizard terminated: %w", err)
	}
	return fm.Result(), nil
}
