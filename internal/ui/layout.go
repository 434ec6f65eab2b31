package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tvu/careboard/internal/theme"
)

// Layout manages the board's frame dimensions: a one-line header
// carrying the signed-in user and unread badge, the content area, and
// a one-line status bar with key hints.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar. Never negative, so views
// can size themselves before the first WindowSizeMsg settles.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		h = 0
	}
	return h
}

// RenderHeader renders the top header bar. status is the right-aligned
// session indicator (unread count, "signed out", or "idle").
func (l Layout) RenderHeader(title string, status string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(status)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(statusRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
