package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToggleIsCopyOnWrite(t *testing.T) {
	orig := DailyLog{Date: "2024-03-06", Taken: []string{"a"}}

	next := orig.Toggle("b")
	assert.Equal(t, []string{"a", "b"}, next.Taken)
	assert.Equal(t, []string{"a"}, orig.Taken)

	back := next.Toggle("b")
	assert.Equal(t, []string{"a"}, back.Taken)
	assert.Equal(t, "2024-03-06", back.Date)
}

func TestIsTaken(t *testing.T) {
	l := NewDailyLog("2024-03-06")
	assert.False(t, l.IsTaken("a"))
	assert.NotNil(t, l.Taken)
	assert.True(t, l.Toggle("a").IsTaken("a"))
}

func TestTodayUsesLocalDate(t *testing.T) {
	now := time.Date(2024, 3, 6, 23, 59, 0, 0, time.Local)
	assert.Equal(t, "2024-03-06", Today(now))
	assert.Equal(t, 3, Weekday(now))
	assert.Equal(t, "2024-03-07", Today(now.Add(2*time.Minute)))
}
