package model

import (
	"math"
	"regexp"
	"sort"
	"strconv"
)

// Period is a time-of-day bucket in which a medication is taken.
type Period string

const (
	PeriodMorning Period = "morning"
	PeriodMidday  Period = "midday"
	PeriodEvening Period = "evening"
	PeriodBedtime Period = "bedtime"
)

// Periods lists every period in canonical display order.
var Periods = []Period{PeriodMorning, PeriodMidday, PeriodEvening, PeriodBedtime}

// periodInfo holds the fixed presentation data for each period.
type periodInfo struct {
	index int
	label string
	glyph string
	clock string
}

var periodTable = map[Period]periodInfo{
	PeriodMorning: {index: 0, label: "Morning", glyph: "☀️", clock: "08:00"},
	PeriodMidday:  {index: 1, label: "Midday", glyph: "☁️", clock: "12:00"},
	PeriodEvening: {index: 2, label: "Evening", glyph: "⛅", clock: "18:00"},
	PeriodBedtime: {index: 3, label: "Bedtime", glyph: "🌙", clock: "21:00"},
}

// Valid reports whether p is one of the four known periods.
func (p Period) Valid() bool {
	_, ok := periodTable[p]
	return ok
}

// Index returns the position of p in the canonical order, or -1 if unknown.
func (p Period) Index() int {
	info, ok := periodTable[p]
	if !ok {
		return -1
	}
	return info.index
}

// Label returns the human-readable name of the period.
func (p Period) Label() string {
	return periodTable[p].label
}

// Glyph returns the emoji shown next to the period.
func (p Period) Glyph() string {
	return periodTable[p].glyph
}

// Clock returns the reminder time ("HH:MM") for the period.
func (p Period) Clock() string {
	return periodTable[p].clock
}

// SortPeriods returns a copy of periods in canonical order. Unknown
// periods sort last in their original relative order.
func SortPeriods(periods []Period) []Period {
	out := make([]Period, len(periods))
	copy(out, periods)
	sort.SliceStable(out, func(i, j int) bool {
		return periodRank(out[i]) < periodRank(out[j])
	})
	return out
}

// Reminders derives the reminder clock times for the given periods, one per
// period, in canonical period order.
func Reminders(periods []Period) []string {
	sorted := SortPeriods(periods)
	reminders := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if p.Valid() {
			reminders = append(reminders, p.Clock())
		}
	}
	return reminders
}

func periodRank(p Period) int {
	if idx := p.Index(); idx >= 0 {
		return idx
	}
	return len(Periods)
}

// Weekday labels indexed 0=Sunday..6=Saturday.
var (
	WeekdayShort = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	WeekdayFull  = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
)

// AllWeekdays is the default repeat schedule for a new medication.
var AllWeekdays = []int{0, 1, 2, 3, 4, 5, 6}

// Pill quantities move in half-pill steps and never go below one half.
const (
	PillStep    = 0.5
	MinPills    = 0.5
	DefaultPill = 1.0
)

// Medication is a user-defined treatment record.
type Medication struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Dosage          string   `json:"dosage,omitempty"`
	PillsPerTime    float64  `json:"pillsPerTime"`
	Instruction     string   `json:"instruction,omitempty"`
	Image           string   `json:"image,omitempty"`
	Periods         []Period `json:"periods"`
	Reminders       []string `json:"reminders"`
	RepeatDays      []int    `json:"repeatDays"`
	SyncRelative    bool     `json:"syncRelative"`
	SyncDoctor      bool     `json:"syncDoctor"`
	RelativeContact string   `json:"relativeContact,omitempty"`
}

// NewDraft returns an unsaved medication with the add-form defaults:
// one pill, every weekday, caregiver sync on.
func NewDraft() Medication {
	days := make([]int, len(AllWeekdays))
	copy(days, AllWeekdays)
	return Medication{
		PillsPerTime: DefaultPill,
		RepeatDays:   days,
		SyncRelative: true,
	}
}

// Normalize drops repeated periods and weekdays, keeping the first of
// each, and re-derives the reminder projection from Periods.
func (m Medication) Normalize() Medication {
	m.Periods = unique(m.Periods)
	m.RepeatDays = unique(m.RepeatDays)
	m.Reminders = Reminders(m.Periods)
	return m
}

func unique[T comparable](in []T) []T {
	if in == nil {
		return nil
	}
	seen := make(map[T]bool, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// EarliestPeriod returns the canonical index of the earliest period the
// medication is taken in. Callers must ensure Periods is non-empty.
func (m Medication) EarliestPeriod() int {
	earliest := math.MaxInt
	for _, p := range m.Periods {
		if r := periodRank(p); r < earliest {
			earliest = r
		}
	}
	return earliest
}

// ScheduledOn reports whether the medication repeats on weekday w
// (0=Sunday..6=Saturday).
func (m Medication) ScheduledOn(w int) bool {
	for _, d := range m.RepeatDays {
		if d == w {
			return true
		}
	}
	return false
}

// HasPeriod reports whether p is among the medication's periods.
func (m Medication) HasPeriod(p Period) bool {
	for _, mp := range m.Periods {
		if mp == p {
			return true
		}
	}
	return false
}

// StepPills adjusts a quantity by delta half-pills, clamped at MinPills.
func StepPills(current float64, steps int) float64 {
	next := current + float64(steps)*PillStep
	if next < MinPills {
		return MinPills
	}
	return next
}

// ValidPills reports whether n is a whole number of half pills, at least
// MinPills.
func ValidPills(n float64) bool {
	return n >= MinPills && math.Mod(n, PillStep) == 0
}

var dosageNumber = regexp.MustCompile(`(\d+(\.\d+)?)`)

// PillsFromDosage extracts the first number found in a dosage description
// ("2 tablets", "0.5 tab") as a pill quantity.
func PillsFromDosage(dosage string) (float64, bool) {
	match := dosageNumber.FindString(dosage)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
