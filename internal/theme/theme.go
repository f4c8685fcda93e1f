package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorIndigo  = lipgloss.AdaptiveColor{Dark: "#748FFC", Light: "#4C51BF"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps a content panel.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle is the bold heading at the top of a view.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// TakenStyle dims medications already taken today.
var TakenStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// BadgeStyle renders the taken/total counter.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue).
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBlue)

// ErrorStyle and SuccessStyle color status bar messages.
var (
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
)

// NavStyle and NavActiveStyle render the bottom navigation tabs.
var (
	NavStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 2)
	NavActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue).
			Underline(true).
			Padding(0, 2)
)

// PeriodStyle returns a color-coded style for a time-of-day period.
func PeriodStyle(p model.Period) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch p {
	case model.PeriodMorning:
		return base.Foreground(ColorOrange)
	case model.PeriodMidday:
		return base.Foreground(ColorBlue)
	case model.PeriodEvening:
		return base.Foreground(ColorIndigo)
	case model.PeriodBedtime:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}

// ContactStyle returns the accent style for a contact kind.
func ContactStyle(kind string) lipgloss.Style {
	base := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.ThickBorder(), false, false, false, true)

	switch kind {
	case model.ContactEmergency:
		return base.BorderForeground(ColorRed).Foreground(ColorRed)
	case model.ContactHospital:
		return base.BorderForeground(ColorBlue)
	default:
		return base.BorderForeground(ColorGreen)
	}
}

// ProgressStyle colors the daily counter by completion.
func ProgressStyle(taken, total int) lipgloss.Style {
	switch {
	case total > 0 && taken == total:
		return BadgeStyle.Foreground(ColorGreen).BorderForeground(ColorGreen)
	case taken > 0:
		return BadgeStyle.Foreground(ColorYellow).BorderForeground(ColorYellow)
	default:
		return BadgeStyle
	}
}
