// Package schedule derives the "today" view from a registry snapshot, a
// daily log snapshot and the current time. Everything here is pure and is
// recomputed on demand.
package schedule

import (
	"sort"
	"time"

	"github.com/nhle/medreminder/internal/model"
)

// Entry is one medication on today's list.
type Entry struct {
	Medication model.Medication
	Taken      bool
}

// Progress counts taken medications over today's set.
type Progress struct {
	Taken int
	Total int
}

// Done reports whether every medication for today has been taken.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Taken == p.Total
}

// Day is the derived view of a single date.
type Day struct {
	Date     string
	Weekday  int
	Entries  []Entry
	Progress Progress
}

// Medications returns the medications in the day's order.
func (d Day) Medications() []model.Medication {
	meds := make([]model.Medication, len(d.Entries))
	for i, e := range d.Entries {
		meds[i] = e.Medication
	}
	return meds
}

// ForWeekday returns the medications that repeat on weekday w, ordered by
// their earliest period. Medications sharing an earliest period keep their
// registry order.
func ForWeekday(meds []model.Medication, w int) []model.Medication {
	today := make([]model.Medication, 0, len(meds))
	for _, m := range meds {
		if m.ScheduledOn(w) {
			today = append(today, m)
		}
	}
	sort.SliceStable(today, func(i, j int) bool {
		return today[i].EarliestPeriod() < today[j].EarliestPeriod()
	})
	return today
}

// ComputeProgress counts the ids in log that belong to today's set. Ids
// for other medications, including removed ones, are ignored.
func ComputeProgress(log model.DailyLog, today []model.Medication) Progress {
	p := Progress{Total: len(today)}
	for _, m := range today {
		if log.IsTaken(m.ID) {
			p.Taken++
		}
	}
	return p
}

// Build derives the view for now's local date. A log recorded on another
// date contributes nothing.
func Build(meds []model.Medication, log model.DailyLog, now time.Time) Day {
	date := model.Today(now)
	if log.Date != date {
		log = model.NewDailyLog(date)
	}

	weekday := model.Weekday(now)
	today := ForWeekday(meds, weekday)

	entries := make([]Entry, len(today))
	for i, m := range today {
		entries[i] = Entry{Medication: m, Taken: log.IsTaken(m.ID)}
	}

	return Day{
		Date:     date,
		Weekday:  weekday,
		Entries:  entries,
		Progress: ComputeProgress(log, today),
	}
}

// Due is an untaken dose still ahead of the current time.
type Due struct {
	Medication model.Medication
	Period     model.Period
	At         time.Time
}

// DueNext returns the soonest untaken dose whose period clock time is at or
// after now. ok is false when nothing else is due today.
func DueNext(day Day, now time.Time) (Due, bool) {
	local := now.Local()
	var best Due
	found := false

	for _, e := range day.Entries {
		if e.Taken {
			continue
		}
		for _, p := range model.SortPeriods(e.Medication.Periods) {
			at, ok := periodTime(local, p)
			if !ok || at.Before(local.Truncate(time.Minute)) {
				continue
			}
			if !found || at.Before(best.At) {
				best = Due{Medication: e.Medication, Period: p, At: at}
				found = true
			}
			break
		}
	}
	return best, found
}

func periodTime(day time.Time, p model.Period) (time.Time, bool) {
	if !p.Valid() {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", p.Clock())
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, day.Location()), true
}
