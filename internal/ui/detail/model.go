package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/schedule"
	"github.com/nhle/medreminder/internal/theme"
)

// BackMsg signals the parent to navigate back to the dashboard.
type BackMsg struct{}

// ToggleMsg asks the parent to flip the shown medication's taken state.
type ToggleMsg struct {
	ID string
}

// Model is the medication detail view component.
type Model struct {
	entry    *schedule.Entry
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Toggle):
			if m.entry != nil {
				id := m.entry.Medication.ID
				return m, func() tea.Msg { return ToggleMsg{ID: id} }
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.entry == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No medication selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.entry == nil {
		return ""
	}

	med := m.entry.Medication
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render("💊 "+med.Name))

	status := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGray).Render("not taken yet today")
	if m.entry.Taken {
		status = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render("✓ taken today")
	}
	sections = append(sections, status, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(14)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		sections = append(sections, metaStyle.Render(label)+valStyle.Render(value))
	}

	if med.Dosage != "" {
		row("Dosage:", med.Dosage)
	}
	row("Per dose:", pillsText(med.PillsPerTime))
	if med.Instruction != "" {
		row("Instruction:", med.Instruction)
	}
	row("Reminders:", strings.Join(med.Reminders, ", "))

	badges := make([]string, 0, len(med.Periods))
	for _, p := range model.SortPeriods(med.Periods) {
		badges = append(badges, theme.PeriodStyle(p).Render(p.Glyph()+" "+p.Label()))
	}
	row("Periods:", strings.Join(badges, " "))
	row("Repeats:", daysText(med.RepeatDays))

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	if med.SyncRelative && med.RelativeContact != "" {
		row("Caregiver:", med.RelativeContact+" (notified when taken)")
	} else {
		row("Caregiver:", "not notified")
	}
	if med.Image != "" {
		row("Photo:", med.Image)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetEntry updates the medication being displayed and re-renders.
func (m *Model) SetEntry(e schedule.Entry) {
	m.entry = &e
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Entry returns the displayed entry, if any.
func (m Model) Entry() (schedule.Entry, bool) {
	if m.entry == nil {
		return schedule.Entry{}, false
	}
	return *m.entry, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.entry != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

func pillsText(n float64) string {
	if n == 1 {
		return "1 pill"
	}
	return fmt.Sprintf("%g pills", n)
}

func daysText(days []int) string {
	if len(days) == 7 {
		return "every day"
	}
	names := make([]string, 0, len(days))
	for w := 0; w < 7; w++ {
		for _, d := range days {
			if d == w {
				names = append(names, model.WeekdayShort[w])
				break
			}
		}
	}
	return strings.Join(names, " ")
}
