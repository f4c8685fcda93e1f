package contacts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/theme"
)

// OutboxLoadedMsg carries the most recent caregiver notifications.
type OutboxLoadedMsg struct {
	Notifications []model.Notification
	Err           error
}

// RefreshMsg asks the parent to reload the outbox.
type RefreshMsg struct{}

// Model is the contacts screen: the configured people to call and the
// caregiver messages sent so far.
type Model struct {
	contacts []model.Contact
	outbox   []model.Notification
	outErr   error
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates the contacts screen for the given contacts.
func New(contacts []model.Contact, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	m := Model{
		contacts: contacts,
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
	m.viewport.SetContent(m.renderContent())
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the contacts screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OutboxLoadedMsg:
		m.outbox = msg.Notifications
		m.outErr = msg.Err
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) {
			return m, func() tea.Msg { return RefreshMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the contacts screen.
func (m Model) View() string {
	return m.viewport.View()
}

func (m Model) renderContent() string {
	sections := []string{theme.TitleStyle.Render("📞 Contacts")}

	if len(m.contacts) == 0 {
		sections = append(sections, theme.HelpStyle.Render("No contacts configured."))
	}
	for _, c := range m.contacts {
		sections = append(sections, renderContact(c), "")
	}

	sections = append(sections, theme.TitleStyle.Render("Recent caregiver messages"))
	switch {
	case m.outErr != nil:
		sections = append(sections, theme.ErrorStyle.Render("Could not load messages: "+m.outErr.Error()))
	case len(m.outbox) == 0:
		sections = append(sections, theme.HelpStyle.Render("Nothing sent yet."))
	default:
		timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
		toStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
		for _, n := range m.outbox {
			sections = append(sections, fmt.Sprintf("%s  %s  %s",
				timeStyle.Render(n.CreatedAt.Local().Format("Jan 02 15:04")),
				toStyle.Render(n.Contact),
				n.Message,
			))
		}
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func renderContact(c model.Contact) string {
	icon := "👧"
	switch c.Kind {
	case model.ContactEmergency:
		icon = "🚑"
	case model.ContactHospital:
		icon = "🏥"
	}

	name := lipgloss.NewStyle().Foreground(theme.ColorGray).Render(icon + " " + c.Name)
	lines := []string{name}
	if c.Phone != "" {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render("☎ "+c.Phone))
	}
	if note := strings.TrimSpace(c.Note); note != "" {
		lines = append(lines, theme.HelpStyle.Render(note))
	}
	return theme.ContactStyle(c.Kind).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.renderContent())
}
