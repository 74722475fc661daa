package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/muurk/stepwise/internal/version"
)

// Application branding constants
const (
	AppName   = "STEPWISE"
	GitHubURL = "github.com/muurk/stepwise"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth  = 60  // Minimum supported terminal width
	MaxContentWidth   = 120 // Maximum content width before capping
	MinTerminalHeight = 12
	chromeHeight      = 8 // Header, progress line, footer and borders
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	TextColor      = lipgloss.Color("#FFFFFF") // White
	SubtleColor    = lipgloss.Color("#626262") // Gray
	BorderColor    = lipgloss.Color("#7D56F4") // Purple (same as primary)
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Progress line: active, reached and not yet reached steps
	ActiveStepStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	ReachedStepStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Padding(0, 1)

	PendingStepStyle = lipgloss.NewStyle().
				Foreground(SubtleColor).
				Padding(0, 1)

	SuccessBoxStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor)

	WarningBoxStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(WarningColor)

	LocationStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)

// RenderTitle renders a title with consistent styling
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderSubtitle renders a subtitle with consistent styling
func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// GetTerminalSize returns the current terminal size clamped to the
// supported range. Used before the first tea.WindowSizeMsg arrives.
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, MinTerminalHeight * 2
	}
	return clampWidth(width), max(height, MinTerminalHeight)
}

func clampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// BuildHeaderContent creates header content with app name, wizard name and
// the current location
func BuildHeaderContent(wizardName string, path string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " " + version.Version)

	parts := []string{left}
	if wizardName != "" {
		parts = append(parts, " ", RenderSubtitle(wizardName))
	}
	parts = append(parts, "  ", LocationStyle.Render(path))

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// RenderApplicationContainer wraps every screen: header, content and a
// context-sensitive footer inside a bordered full-screen panel.
func RenderApplicationContainer(header string, content string, footer string, terminalWidth int, terminalHeight int) string {
	innerWidth := max(terminalWidth-4, 1)

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(innerWidth).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Foreground(SubtleColor).
		Width(innerWidth).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(innerWidth).
		Padding(0, 1)

	innerContent := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(header),
		contentStyle.Render(content),
		footerStyle.Render(footer),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(max(terminalWidth-2, 1)).
		Height(max(terminalHeight-2, 1)).
		AlignVertical(lipgloss.Top).
		Render(innerContent)

	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Left,
		lipgloss.Top,
		bordered,
	)
}
