package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/crowdbricks/admin-console/internal/theme"
)

// Layout manages the terminal layout dimensions for the admin console.
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
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with a title (including the
// unread badge) on the left and the sync-mode indicator on the right.
func (l Layout) RenderHeader(title string, syncStatus string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(syncStatus)

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

// RenderStatusBar renders the bottom status bar. When a toast is active
// it takes the whole bar, styled by severity; otherwise the key hints
// are shown.
func (l Layout) RenderStatusBar(hints, toast string, toastIsError bool) string {
	var rendered string
	switch {
	case toast != "" && toastIsError:
		rendered = theme.ToastErrorStyle.Render(toast)
	case toast != "":
		rendered = theme.ToastStyle.Render(toast)
	default:
		rendered = theme.StatusBarStyle.Render(hints)
	}

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	fillStyle := theme.StatusBarStyle
	filler := fillStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(fillStyle.GetBackground()).
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
