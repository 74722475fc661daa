package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Renderer turns a step body into terminal text at the given width.
type Renderer func(body string, width int) string

// renderMarkdown renders markdown content using glamour.
// Falls back to plain word wrapping if rendering fails.
func renderMarkdown(content string, width int) string {
	if width > MaxContentWidth {
		width = MaxContentWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return PlainRenderer(content, width)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return PlainRenderer(content, width)
	}

	// Remove trailing newline that glamour adds
	return strings.TrimSuffix(rendered, "\n")
}

// PlainRenderer word-wraps the body without markdown styling.
func PlainRenderer(content string, width int) string {
	if width <= 0 {
		return content
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}
