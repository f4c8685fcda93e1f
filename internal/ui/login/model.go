package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/theme"
)

// LoggedInMsg is emitted when the user confirms the login form. The phone
// number is not verified.
type LoggedInMsg struct {
	Phone string
}

// BackMsg signals the parent to return to the welcome screen.
type BackMsg struct{}

// Model is the phone-number login screen.
type Model struct {
	keys   *keys.KeyMap
	input  textinput.Model
	width  int
	height int
}

// New creates a new login screen.
func New(k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "0XX-XXX-XXXX"
	ti.Prompt = "☎  "
	ti.CharLimit = 20
	ti.Width = 24

	return Model{keys: k, input: ti, width: width, height: height}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Focus gives keyboard focus to the phone input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}

// Update handles messages for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Select):
			phone := strings.TrimSpace(m.input.Value())
			m.input.Blur()
			return m, func() tea.Msg { return LoggedInMsg{Phone: phone} }
		case key.Matches(msg, m.keys.Back):
			m.input.Blur()
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the login card.
func (m Model) View() string {
	label := theme.HelpStyle.Render("Phone number")
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Sign in"),
		label,
		m.input.View(),
		"",
		theme.HelpStyle.Render("enter continue · esc back to start"),
	)

	card := theme.PanelStyle.BorderForeground(theme.ColorBlue).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
