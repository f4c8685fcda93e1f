package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/schedule"
	"github.com/nhle/medreminder/internal/theme"
)

// DayLoadedMsg carries a freshly derived view of today.
type DayLoadedMsg struct {
	Day schedule.Day
	Now time.Time
	Err error
}

// ToggleRequestMsg asks the parent to flip a medication's taken state.
type ToggleRequestMsg struct {
	ID string
}

// RemoveRequestMsg reports the user's answer to the removal dialog.
type RemoveRequestMsg struct {
	Medication model.Medication
	Approved   bool
}

// DetailRequestMsg asks the parent to show a medication's details.
type DetailRequestMsg struct {
	Entry schedule.Entry
}

// RefreshMsg asks the parent to reload today's view.
type RefreshMsg struct{}

type mode int

const (
	modeList mode = iota
	modeConfirmRemove
)

// confirmBinding keeps the dialog value on the heap so huh's pointer stays
// valid across model copies.
type confirmBinding struct {
	approved bool
	target   model.Medication
}

// Model is today's medication list.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	day         schedule.Day
	due         schedule.Due
	hasDue      bool
	loaded      bool
	err         error
	mode        mode
	confirmForm *huh.Form
	cb          *confirmBinding
	width       int
	height      int
}

// New creates a new dashboard model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, EntryDelegate{}, width, height-4)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return Model{
		list:   l,
		keys:   k,
		cb:     &confirmBinding{},
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Day returns the view currently displayed.
func (m Model) Day() schedule.Day {
	return m.day
}

// SetDay replaces the displayed view, keeping the cursor where it was.
func (m *Model) SetDay(day schedule.Day, now time.Time) tea.Cmd {
	m.day = day
	m.loaded = true
	m.err = nil
	m.due, m.hasDue = schedule.DueNext(day, now)

	items := make([]list.Item, len(day.Entries))
	for i, e := range day.Entries {
		items[i] = EntryItem{Entry: e}
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}
	return cmd
}

// SelectedEntry returns the entry under the cursor.
func (m Model) SelectedEntry() (schedule.Entry, bool) {
	it, ok := m.list.SelectedItem().(EntryItem)
	if !ok {
		return schedule.Entry{}, false
	}
	return it.Entry, true
}

// Confirming reports whether the removal dialog is open.
func (m Model) Confirming() bool {
	return m.mode == modeConfirmRemove
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DayLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		return m, m.SetDay(msg.Day, msg.Now)

	case tea.KeyMsg:
		if m.mode == modeConfirmRemove {
			return m.updateConfirm(msg)
		}
		return m.handleKeys(msg)
	}

	if m.mode == modeConfirmRemove {
		return m.updateConfirm(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		e, ok := m.SelectedEntry()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return ToggleRequestMsg{ID: e.Medication.ID} }

	case key.Matches(msg, m.keys.Detail):
		e, ok := m.SelectedEntry()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return DetailRequestMsg{Entry: e} }

	case key.Matches(msg, m.keys.Remove):
		e, ok := m.SelectedEntry()
		if !ok {
			return m, nil
		}
		m.cb.approved = false
		m.cb.target = e.Medication
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmRemove
		return m, m.confirmForm.Init()

	case key.Matches(msg, m.keys.Refresh):
		return m, func() tea.Msg { return RefreshMsg{} }
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove %q?", m.cb.target.Name)).
				Description("It will no longer appear on any day.").
				Affirmative("Yes, remove").
				Negative("Cancel").
				Value(&m.cb.approved),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeList
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		answer := RemoveRequestMsg{Medication: m.cb.target}
		m.mode = modeList
		m.confirmForm = nil
		return m, func() tea.Msg { return answer }
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}

	switch m.confirmForm.State {
	case huh.StateCompleted, huh.StateAborted:
		answer := RemoveRequestMsg{
			Medication: m.cb.target,
			Approved:   m.confirmForm.State == huh.StateCompleted && m.cb.approved,
		}
		m.mode = modeList
		m.confirmForm = nil
		return m, func() tea.Msg { return answer }
	}
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	header := m.renderHeader()

	if m.mode == modeConfirmRemove && m.confirmForm != nil {
		dialog := theme.PanelStyle.BorderForeground(theme.ColorRed).Render(m.confirmForm.View())
		return lipgloss.JoinVertical(lipgloss.Left, header, "", dialog)
	}

	if m.err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, header, "",
			theme.ErrorStyle.Render("Could not load today's medications: "+m.err.Error()))
	}

	if !m.loaded {
		return lipgloss.JoinVertical(lipgloss.Left, header, "", theme.HelpStyle.Render("Loading..."))
	}

	if len(m.day.Entries) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderEmptyState())
	}

	parts := []string{header, m.renderBanner(), m.list.View()}
	if m.caregiverSynced() {
		parts = append(parts, theme.HelpStyle.Render(caregiverFooter))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

const caregiverFooter = "Caregivers are told automatically when you take your medication."

// caregiverSynced reports whether any of today's medications notifies a
// caregiver.
func (m Model) caregiverSynced() bool {
	for _, e := range m.day.Entries {
		if e.Medication.SyncRelative && e.Medication.RelativeContact != "" {
			return true
		}
	}
	return false
}

func (m Model) renderHeader() string {
	title := theme.TitleStyle.MarginBottom(0).Render("Today's medications")
	date := lipgloss.NewStyle().Foreground(theme.ColorBlue).Render(DateLabel(m.day))
	left := lipgloss.JoinVertical(lipgloss.Left, title, date)

	p := m.day.Progress
	badge := theme.ProgressStyle(p.Taken, p.Total).Render(fmt.Sprintf("%d/%d", p.Taken, p.Total))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, left, lipgloss.NewStyle().Width(gap).Render(""), badge)
}

func (m Model) renderBanner() string {
	if m.day.Progress.Done() {
		return theme.SuccessStyle.Render("All done for today. Well done!")
	}
	if !m.hasDue {
		return ""
	}
	return lipgloss.NewStyle().Foreground(theme.ColorYellow).Render(fmt.Sprintf(
		"Next: %s %s at %s (%s)",
		m.due.Period.Glyph(), m.due.Medication.Name, m.due.At.Format("15:04"), PillsLabel(m.due.Medication.PillsPerTime),
	))
}

// renderEmptyState shows guidance text when nothing is scheduled today.
func (m Model) renderEmptyState() string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-3).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render("📭\n\nNo medications scheduled today.\n\nPress 2 to add one.")
}

// DateLabel renders a day's date as "Wednesday 6/3/2024".
func DateLabel(day schedule.Day) string {
	t, err := time.ParseInLocation(model.DateLayout, day.Date, time.Local)
	if err != nil || day.Weekday < 0 || day.Weekday > 6 {
		return day.Date
	}
	return fmt.Sprintf("%s %d/%d/%d", model.WeekdayFull[day.Weekday], t.Day(), int(t.Month()), t.Year())
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-4)
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 30 {
		w = 30
	}
	if w > 70 {
		w = 70
	}
	return w
}
