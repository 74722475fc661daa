package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/stepwise/internal/config"
)

func newTestModel(t *testing.T, def *config.Definition) AppModel {
	t.Helper()
	if def == nil {
		def = config.NewDefinition()
	}
	m, err := NewAppModel(context.Background(), def, Options{Renderer: PlainRenderer})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(AppModel)
}

func press(t *testing.T, m AppModel, keys ...string) AppModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(AppModel)
	}
	return m
}

func TestNewAppModelMountsAtInitialStep(t *testing.T) {
	m := newTestModel(t, nil)

	assert.Equal(t, ScreenStep, m.CurrentScreen())
	assert.Equal(t, "/0/", m.History().Current().Path)

	step, ok := m.Wizard().Active()
	require.True(t, ok)
	assert.Equal(t, "Step 1", step.Title)
	assert.Contains(t, m.View(), "Step 1")
}

func TestStepKeysNavigate(t *testing.T) {
	m := newTestModel(t, nil)

	m = press(t, m, "right")
	assert.Equal(t, "/1/", m.History().Current().Path)

	m = press(t, m, "n", "n")
	assert.Equal(t, "/2/", m.History().Current().Path, "next stops at the last step")

	m = press(t, m, "p")
	assert.Equal(t, "/1/", m.History().Current().Path)

	m = press(t, m, "r")
	assert.Equal(t, "/0/", m.History().Current().Path)
	assert.Equal(t, 2, m.Wizard().State().MaxStepReached)

	m = press(t, m, "3")
	assert.Equal(t, "/2/", m.History().Current().Path)
}

func TestEnterCompletesOnLastStep(t *testing.T) {
	m := newTestModel(t, nil)

	m = press(t, m, "enter", "enter")
	assert.Equal(t, ScreenStep, m.CurrentScreen())
	assert.Equal(t, "/2/", m.History().Current().Path)

	m = press(t, m, "enter")
	assert.Equal(t, ScreenCompleted, m.CurrentScreen())
	assert.Equal(t, "/completed/", m.History().Current().Path)
	assert.Contains(t, m.View(), "Wizard completed")

	r := m.Result()
	assert.Equal(t, OutcomeCompleted, r.Outcome)
	assert.Equal(t, 2, r.MaxStepReached)
}

func TestCancelShowsCancelledScreen(t *testing.T) {
	m := newTestModel(t, nil)

	m = press(t, m, "n", "esc")
	assert.Equal(t, ScreenCancelled, m.CurrentScreen())
	assert.Equal(t, "/", m.History().Current().Path)
	assert.Contains(t, m.View(), "Wizard cancelled")
	assert.Contains(t, m.View(), "Left from step 2")
	assert.Equal(t, OutcomeCancelled, m.Result().Outcome)
}

func TestSharedTerminalLocationUsesLastEvent(t *testing.T) {
	def := config.NewDefinition()
	def.CompletedPath = "/"
	m := newTestModel(t, def)

	m = press(t, m, "c")
	assert.Equal(t, ScreenCancelled, m.CurrentScreen())

	m = press(t, m, "s", "3", "enter")
	assert.Equal(t, ScreenCompleted, m.CurrentScreen())
}

func TestHistoryKeysResynchronize(t *testing.T) {
	m := newTestModel(t, nil)

	m = press(t, m, "n", "n", "[")
	assert.Equal(t, "/1/", m.History().Current().Path)
	step, ok := m.Wizard().Active()
	require.True(t, ok)
	assert.Equal(t, "Step 2", step.Title)

	m = press(t, m, "]")
	assert.Equal(t, "/2/", m.History().Current().Path)
}

func TestHistoryBackFromTerminalScreen(t *testing.T) {
	m := newTestModel(t, nil)

	m = press(t, m, "n", "esc")
	require.Equal(t, ScreenCancelled, m.CurrentScreen())

	m = press(t, m, "[")
	assert.Equal(t, ScreenStep, m.CurrentScreen())
	assert.Equal(t, "/1/", m.History().Current().Path)
}

func TestStartAgainRemounts(t *testing.T) {
	m := newTestModel(t, nil)
	first := m.Wizard()

	m = press(t, m, "esc", "s")
	assert.Equal(t, ScreenStep, m.CurrentScreen())
	assert.NotSame(t, first, m.Wizard())
	assert.Equal(t, "/0/", m.History().Current().Path)

	_, err := first.Next()
	assert.Error(t, err, "the previous mount is unmounted")
}

func TestGoToMissingStepShowsNoContent(t *testing.T) {
	m := newTestModel(t, nil)

	m = press(t, m, "9")
	assert.Equal(t, ScreenNoContent, m.CurrentScreen())
	assert.Contains(t, m.View(), "There is no step 9")
	assert.Equal(t, 8, m.Wizard().State().MaxStepReached)
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, nil)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, updated.(AppModel).View())
	assert.Equal(t, OutcomeQuit, updated.(AppModel).Result().Outcome)
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, nil)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = updated.(AppModel)
	assert.Equal(t, 80, m.Width)
	assert.Equal(t, 30, m.Height)
	assert.True(t, strings.Contains(m.View(), "STEPWISE"))
}
