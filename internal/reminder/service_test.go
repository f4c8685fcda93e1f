package reminder_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/notify"
	"github.com/nhle/medreminder/internal/registry"
	"github.com/nhle/medreminder/internal/reminder"
	"github.com/nhle/medreminder/tests/testutil"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakeNotifier) AdherenceConfirmed(_ context.Context, ev notify.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fixture struct {
	svc        *reminder.Service
	notifier   *fakeNotifier
	dispatcher *notify.Dispatcher
	now        *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2024, 3, 6, 7, 30, 0, 0, time.Local) // Wednesday
	n := &fakeNotifier{}
	d := notify.NewDispatcher(n, time.Second, nil)
	svc := reminder.New(testutil.NewTestStore(t), nil,
		reminder.WithClock(testutil.Clock(&now)),
		reminder.WithDispatcher(d),
	)
	return &fixture{svc: svc, notifier: n, dispatcher: d, now: &now}
}

func draft(name string, days []int, periods ...model.Period) model.Medication {
	d := model.NewDraft()
	d.Name = name
	d.RepeatDays = days
	d.Periods = periods
	d.RelativeContact = "081-234-5678"
	return d
}

func TestTodayOrdersByEarliestPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	one, err := f.svc.SaveMedication(ctx, draft("one", model.AllWeekdays, model.PeriodEvening))
	require.NoError(t, err)
	two, err := f.svc.SaveMedication(ctx, draft("two", []int{1, 3, 5}, model.PeriodMorning))
	require.NoError(t, err)
	_, err = f.svc.SaveMedication(ctx, draft("sunday", []int{0}, model.PeriodMorning))
	require.NoError(t, err)

	day, err := f.svc.Today(ctx)
	require.NoError(t, err)
	require.Len(t, day.Entries, 2)
	assert.Equal(t, two.ID, day.Entries[0].Medication.ID)
	assert.Equal(t, one.ID, day.Entries[1].Medication.ID)
	assert.Equal(t, "2024-03-06", day.Date)
}

func TestToggleTakenNotifiesCaregiverOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.SaveMedication(ctx, draft("Metformin", model.AllWeekdays, model.PeriodMorning))
	require.NoError(t, err)

	res, err := f.svc.ToggleTaken(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, res.Taken)
	assert.True(t, res.Notified)
	assert.Contains(t, res.Message, "Well done")
	assert.Contains(t, res.Message, "081-234-5678")

	res, err = f.svc.ToggleTaken(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, res.Taken)
	assert.False(t, res.Notified)

	f.dispatcher.Wait()
	require.Equal(t, 1, f.notifier.count())
	assert.Equal(t, "081-234-5678", f.notifier.events[0].Contact)
	assert.Equal(t, m.ID, f.notifier.events[0].Medication.ID)

	day, err := f.svc.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, day.Progress.Taken)
}

func TestToggleWithoutSyncDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := draft("Vitamin", model.AllWeekdays, model.PeriodMidday)
	d.SyncRelative = false
	m, err := f.svc.SaveMedication(ctx, d)
	require.NoError(t, err)

	res, err := f.svc.ToggleTaken(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, res.Taken)
	assert.False(t, res.Notified)

	f.dispatcher.Wait()
	assert.Equal(t, 0, f.notifier.count())
}

func TestSaveRejectsInvalidDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveMedication(ctx, draft("", model.AllWeekdays, model.PeriodMorning))
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, model.ReasonNameRequired, verr.Reason)

	noContact := draft("Aspirin", model.AllWeekdays, model.PeriodMorning)
	noContact.RelativeContact = "  "
	_, err = f.svc.SaveMedication(ctx, noContact)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, model.ReasonContactRequired, verr.Reason)

	meds, err := f.svc.Medications(ctx)
	require.NoError(t, err)
	assert.Empty(t, meds)
}

func TestRemovingTakenMedicationShrinksDenominator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.SaveMedication(ctx, draft("a", model.AllWeekdays, model.PeriodMorning))
	require.NoError(t, err)
	b, err := f.svc.SaveMedication(ctx, draft("b", model.AllWeekdays, model.PeriodEvening))
	require.NoError(t, err)

	_, err = f.svc.ToggleTaken(ctx, a.ID)
	require.NoError(t, err)
	res, err := f.svc.ToggleTaken(ctx, b.ID)
	require.NoError(t, err)
	f.dispatcher.Wait()

	removed, err := f.svc.RemoveMedication(ctx, b.ID, registry.Confirmed)
	require.NoError(t, err)
	require.True(t, removed)

	day, err := f.svc.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, day.Progress.Total)
	assert.Equal(t, 1, day.Progress.Taken)
	assert.Contains(t, res.Log.Taken, b.ID)

	// The dangling id survives in the log until the date changes.
	again, err := f.svc.ToggleTaken(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, again.Log.Taken)
}

func TestNewDayResetsProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.SaveMedication(ctx, draft("a", model.AllWeekdays, model.PeriodMorning))
	require.NoError(t, err)
	_, err = f.svc.ToggleTaken(ctx, m.ID)
	require.NoError(t, err)

	*f.now = f.now.Add(24 * time.Hour)

	day, err := f.svc.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-07", day.Date)
	assert.Equal(t, 0, day.Progress.Taken)
	assert.False(t, day.Entries[0].Taken)
}

func TestOutboxListsRecordedNotifications(t *testing.T) {
	now := time.Date(2024, 3, 6, 7, 30, 0, 0, time.Local)
	st := testutil.NewTestStore(t)
	d := notify.NewDispatcher(notify.NewOutboxNotifier(st, nil), time.Second, nil)
	svc := reminder.New(st, nil, reminder.WithClock(testutil.Clock(&now)), reminder.WithDispatcher(d))
	ctx := context.Background()

	m, err := svc.SaveMedication(ctx, draft("Metformin", model.AllWeekdays, model.PeriodMorning))
	require.NoError(t, err)
	_, err = svc.ToggleTaken(ctx, m.ID)
	require.NoError(t, err)
	d.Wait()

	out, err := svc.Outbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Message, "Metformin")
}
