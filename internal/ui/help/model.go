package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/theme"
)

// commands lists what the command palette understands.
var commands = [][2]string{
	{"today", "show today's medications"},
	{"add", "add a medication"},
	{"contacts", "show contacts and sent messages"},
	{"refresh", "reload from disk"},
	{"logout", "back to the welcome screen"},
	{"quit", "exit"},
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	cmdTitle := theme.TitleStyle.MarginTop(1).Render("Commands (:)")
	nameStyle := lipgloss.NewStyle().Bold(true).Width(10)
	rows := make([]string, len(commands))
	for i, c := range commands {
		rows[i] = nameStyle.Render(c[0]) + theme.HelpStyle.Render(c[1])
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, helpText, cmdTitle, lipgloss.JoinVertical(lipgloss.Left, rows...))

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
