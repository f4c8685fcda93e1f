package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/schedule"
	"github.com/nhle/medreminder/internal/theme"
)

// EntryItem wraps a schedule.Entry so it can be used in a bubbles/list.
type EntryItem struct {
	Entry schedule.Entry
}

// FilterValue returns the string used for fuzzy filtering.
func (i EntryItem) FilterValue() string { return i.Entry.Medication.Name }

// Title returns the medication name.
func (i EntryItem) Title() string { return i.Entry.Medication.Name }

// Description returns the pill count and periods.
func (i EntryItem) Description() string {
	return PillsLabel(i.Entry.Medication.PillsPerTime) + " · " + PeriodsLabel(i.Entry.Medication.Periods)
}

// EntryDelegate implements list.ItemDelegate for today's medications.
type EntryDelegate struct{}

// Height returns the number of lines each item takes.
func (d EntryDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d EntryDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d EntryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a medication as a name line and a period badge line.
func (d EntryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(EntryItem)
	if !ok {
		return
	}

	med := it.Entry.Medication
	check := lipgloss.NewStyle().Foreground(theme.ColorGray).Render("○")
	if it.Entry.Taken {
		check = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render("✓")
	}

	name := med.Name
	if it.Entry.Taken {
		name = theme.TakenStyle.Render(name)
	}
	pills := lipgloss.NewStyle().Foreground(theme.ColorBlue).Render(PillsLabel(med.PillsPerTime))

	first := fmt.Sprintf("%s 💊 %s  %s", check, name, pills)

	badges := make([]string, 0, len(med.Periods))
	for _, p := range model.SortPeriods(med.Periods) {
		badges = append(badges, theme.PeriodStyle(p).Render(p.Glyph()+" "+p.Label()))
	}
	second := "   " + strings.Join(badges, " ")

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}
	fmt.Fprint(w, style.Render(first+"\n"+second))
}

// PillsLabel formats a per-dose quantity, e.g. "1.5 pills".
func PillsLabel(n float64) string {
	noun := "pills"
	if n == 1 {
		noun = "pill"
	}
	return strconv.FormatFloat(n, 'f', -1, 64) + " " + noun
}

// PeriodsLabel lists periods in canonical order with their clock times.
func PeriodsLabel(periods []model.Period) string {
	parts := make([]string, 0, len(periods))
	for _, p := range model.SortPeriods(periods) {
		if p.Valid() {
			parts = append(parts, p.Label()+" "+p.Clock())
		}
	}
	return strings.Join(parts, ", ")
}
