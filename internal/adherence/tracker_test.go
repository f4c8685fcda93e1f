package adherence_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/adherence"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/store"
	"github.com/nhle/medreminder/tests/testutil"
)

func storedLog(t *testing.T, s store.Store) model.DailyLog {
	t.Helper()
	body, err := s.GetDocument(context.Background(), store.KeyDailyLog)
	require.NoError(t, err)
	var log model.DailyLog
	require.NoError(t, json.Unmarshal(body, &log))
	return log
}

func TestLoadOrResetCreatesEmptyLog(t *testing.T) {
	s := testutil.NewTestStore(t)
	tr := adherence.New(s, nil)

	log, err := tr.LoadOrReset(context.Background(), "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", log.Date)
	assert.Empty(t, log.Taken)

	assert.Equal(t, log, storedLog(t, s))
}

func TestLoadOrResetKeepsSameDay(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutDocument(ctx, store.KeyDailyLog,
		[]byte(`{"date":"2024-03-06","taken":["a","b"]}`)))

	tr := adherence.New(s, nil)
	log, err := tr.LoadOrReset(ctx, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, log.Taken)
}

func TestLoadOrResetDiscardsOtherDay(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutDocument(ctx, store.KeyDailyLog,
		[]byte(`{"date":"2024-03-05","taken":["a"]}`)))

	tr := adherence.New(s, nil)
	log, err := tr.LoadOrReset(ctx, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, model.NewDailyLog("2024-03-06"), log)
	assert.Equal(t, log, storedLog(t, s))
}

func TestLoadOrResetRecoversFromMalformedDocument(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutDocument(ctx, store.KeyDailyLog, []byte(`{not json`)))

	tr := adherence.New(s, nil)
	log, err := tr.LoadOrReset(ctx, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, model.NewDailyLog("2024-03-06"), log)
}

func TestToggleIsSelfInverse(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.Local)
	tr := adherence.New(s, nil, adherence.WithClock(testutil.Clock(&now)))

	start, err := tr.LoadOrReset(ctx, tr.Today())
	require.NoError(t, err)

	once, err := tr.Toggle(ctx, start, "m1")
	require.NoError(t, err)
	assert.True(t, adherence.IsTaken(once, "m1"))
	assert.Equal(t, once, storedLog(t, s))

	twice, err := tr.Toggle(ctx, once, "m1")
	require.NoError(t, err)
	assert.False(t, adherence.IsTaken(twice, "m1"))
	assert.ElementsMatch(t, start.Taken, twice.Taken)
}

func TestToggleNeverDuplicates(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.Local)
	tr := adherence.New(s, nil, adherence.WithClock(testutil.Clock(&now)))

	log, err := tr.LoadOrReset(ctx, tr.Today())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		log, err = tr.Toggle(ctx, log, "m1")
		require.NoError(t, err)
		log, err = tr.Toggle(ctx, log, "m2")
		require.NoError(t, err)
	}
	require.Equal(t, []string{"m1", "m2"}, log.Taken)

	log, err = tr.Toggle(ctx, log, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, log.Taken)

	for i := 0; i < 3; i++ {
		log, err = tr.Toggle(ctx, log, "m1")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"m2", "m1"}, log.Taken)

	stored, err := tr.LoadOrReset(ctx, tr.Today())
	require.NoError(t, err)
	assert.Equal(t, []string{"m2", "m1"}, stored.Taken)
}

func TestToggleAfterMidnightStartsFreshLog(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 5, 23, 59, 0, 0, time.Local)
	tr := adherence.New(s, nil, adherence.WithClock(testutil.Clock(&now)))

	log, err := tr.LoadOrReset(ctx, tr.Today())
	require.NoError(t, err)
	log, err = tr.Toggle(ctx, log, "yesterday")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	log, err = tr.Toggle(ctx, log, "today")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", log.Date)
	assert.Equal(t, []string{"today"}, log.Taken)
	assert.Equal(t, log, storedLog(t, s))
}
