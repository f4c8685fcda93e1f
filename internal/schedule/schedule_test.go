package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/schedule"
)

// 2024-03-06 is a Wednesday.
var wednesday = time.Date(2024, 3, 6, 7, 30, 0, 0, time.Local)

func med(id string, days []int, periods ...model.Period) model.Medication {
	return model.Medication{
		ID:           id,
		Name:         "med " + id,
		PillsPerTime: 1,
		Periods:      periods,
		RepeatDays:   days,
	}.Normalize()
}

func ids(meds []model.Medication) []string {
	out := make([]string, len(meds))
	for i, m := range meds {
		out[i] = m.ID
	}
	return out
}

func TestForWeekdayFiltersByRepeatDays(t *testing.T) {
	meds := []model.Medication{
		med("weekdays", []int{1, 2, 3, 4, 5}, model.PeriodMorning),
		med("sunday", []int{0}, model.PeriodMorning),
		med("daily", model.AllWeekdays, model.PeriodMorning),
	}

	assert.Equal(t, []string{"weekdays", "daily"}, ids(schedule.ForWeekday(meds, 3)))
	assert.Equal(t, []string{"sunday", "daily"}, ids(schedule.ForWeekday(meds, 0)))
	assert.Empty(t, schedule.ForWeekday(nil, 3))
}

func TestForWeekdayIsStable(t *testing.T) {
	meds := []model.Medication{
		med("A", model.AllWeekdays, model.PeriodMorning, model.PeriodBedtime),
		med("late", model.AllWeekdays, model.PeriodBedtime),
		med("B", model.AllWeekdays, model.PeriodEvening, model.PeriodMorning),
		med("noon", model.AllWeekdays, model.PeriodMidday),
	}

	assert.Equal(t, []string{"A", "B", "noon", "late"}, ids(schedule.ForWeekday(meds, 2)))
}

func TestWednesdayScenario(t *testing.T) {
	meds := []model.Medication{
		med("1", model.AllWeekdays, model.PeriodEvening),
		med("2", []int{1, 3, 5}, model.PeriodMorning),
	}

	day := schedule.Build(meds, model.NewDailyLog("2024-03-06"), wednesday)
	assert.Equal(t, 3, day.Weekday)
	assert.Equal(t, []string{"2", "1"}, ids(day.Medications()))
}

func TestProgressIgnoresIDsOutsideToday(t *testing.T) {
	meds := []model.Medication{
		med("a", model.AllWeekdays, model.PeriodMorning),
		med("b", model.AllWeekdays, model.PeriodEvening),
		med("tue", []int{2}, model.PeriodMorning),
	}
	log := model.DailyLog{Date: "2024-03-06", Taken: []string{"a", "tue", "gone", "older"}}

	day := schedule.Build(meds, log, wednesday)
	assert.Equal(t, schedule.Progress{Taken: 1, Total: 2}, day.Progress)
	assert.LessOrEqual(t, day.Progress.Taken, day.Progress.Total)
	assert.False(t, day.Progress.Done())
}

func TestRemovedMedicationLeavesDanglingIDIgnored(t *testing.T) {
	a := med("a", model.AllWeekdays, model.PeriodMorning)
	b := med("b", model.AllWeekdays, model.PeriodMidday)
	log := model.DailyLog{Date: "2024-03-06", Taken: []string{"a", "b"}}

	before := schedule.Build([]model.Medication{a, b}, log, wednesday)
	assert.Equal(t, schedule.Progress{Taken: 2, Total: 2}, before.Progress)
	assert.True(t, before.Progress.Done())

	after := schedule.Build([]model.Medication{a}, log, wednesday)
	assert.Equal(t, schedule.Progress{Taken: 1, Total: 1}, after.Progress)
	assert.Contains(t, log.Taken, "b")
}

func TestBuildTreatsStaleLogAsEmpty(t *testing.T) {
	meds := []model.Medication{med("a", model.AllWeekdays, model.PeriodMorning)}
	log := model.DailyLog{Date: "2024-03-05", Taken: []string{"a"}}

	day := schedule.Build(meds, log, wednesday)
	require.Len(t, day.Entries, 1)
	assert.False(t, day.Entries[0].Taken)
	assert.Equal(t, 0, day.Progress.Taken)
	assert.Equal(t, "2024-03-06", day.Date)
}

func TestDueNext(t *testing.T) {
	meds := []model.Medication{
		med("morning", model.AllWeekdays, model.PeriodMorning),
		med("evening", model.AllWeekdays, model.PeriodEvening),
		med("noon", model.AllWeekdays, model.PeriodMidday),
	}
	log := model.DailyLog{Date: "2024-03-06", Taken: []string{"morning"}}
	day := schedule.Build(meds, log, wednesday)

	due, ok := schedule.DueNext(day, wednesday)
	require.True(t, ok)
	assert.Equal(t, "noon", due.Medication.ID)
	assert.Equal(t, model.PeriodMidday, due.Period)
	assert.Equal(t, 12, due.At.Hour())

	late := time.Date(2024, 3, 6, 22, 0, 0, 0, time.Local)
	_, ok = schedule.DueNext(schedule.Build(meds, log, late), late)
	assert.False(t, ok)
}
