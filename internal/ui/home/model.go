package home

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/theme"
)

// StartMsg is emitted when the user leaves the welcome screen.
type StartMsg struct{}

// Model is the welcome screen.
type Model struct {
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates the welcome screen.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the welcome screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Select) {
		return m, func() tea.Msg { return StartMsg{} }
	}
	return m, nil
}

// View renders the welcome card.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		Render("💊  Medication Reminder")

	tagline := lipgloss.JoinVertical(lipgloss.Center,
		"Take every dose, on time.",
		lipgloss.NewStyle().Bold(true).Underline(true).Foreground(theme.ColorGreen).Render("Stay healthy."),
	)

	start := theme.HeaderStyle.Padding(0, 3).Render("enter  Get started")

	card := theme.PanelStyle.
		BorderForeground(theme.ColorBlue).
		Padding(2, 6).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, "", tagline, "", start))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
