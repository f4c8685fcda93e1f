package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/theme"
)

// Layout manages the terminal frame dimensions: header, content, optional
// bottom navigation and status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	NavHeight       int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1; the navigation bar is
// hidden until ShowNav is called.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ShowNav reserves a row for the bottom navigation bar.
func (l Layout) ShowNav(show bool) Layout {
	if show {
		l.NavHeight = 1
	} else {
		l.NavHeight = 0
	}
	return l
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header, navigation and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.NavHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top header bar with a title and a right-aligned
// status.
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

// NavItem is one tab of the bottom navigation bar.
type NavItem struct {
	Key    string
	Label  string
	Active bool
}

// RenderNav renders the bottom navigation tabs centered across the width.
func (l Layout) RenderNav(items []NavItem) string {
	tabs := make([]string, len(items))
	for i, it := range items {
		style := theme.NavStyle
		if it.Active {
			style = theme.NavActiveStyle
		}
		tabs[i] = style.Render(it.Key + " " + it.Label)
	}
	return lipgloss.PlaceHorizontal(l.Width, lipgloss.Center, strings.Join(tabs, " "))
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
// the header, content area, navigation (when present) and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	nav string,
	statusBar string,
) string {
	content = lipgloss.NewStyle().Height(l.ContentHeight()).MaxHeight(l.ContentHeight()).Render(content)
	parts := []string{header, content}
	if l.NavHeight > 0 && nav != "" {
		parts = append(parts, nav)
	}
	parts = append(parts, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
