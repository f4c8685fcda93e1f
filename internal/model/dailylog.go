package model

import "time"

// DateLayout is the ISO calendar date format used as the daily log key.
const DateLayout = "2006-01-02"

// DailyLog records which medications were taken on a single calendar date.
type DailyLog struct {
	// Date is the local calendar date, formatted with DateLayout.
	Date string `json:"date"`

	// Taken holds the IDs of medications marked as administered. It may
	// reference medications that have since been removed.
	Taken []string `json:"taken"`
}

// Today returns the local calendar date of now as an ISO date string.
func Today(now time.Time) string {
	return now.Local().Format(DateLayout)
}

// Weekday returns the local weekday index of now (0=Sunday..6=Saturday).
func Weekday(now time.Time) int {
	return int(now.Local().Weekday())
}

// NewDailyLog returns an empty log for the given date.
func NewDailyLog(date string) DailyLog {
	return DailyLog{Date: date, Taken: []string{}}
}

// IsTaken reports whether id is marked as taken in the log.
func (l DailyLog) IsTaken(id string) bool {
	for _, t := range l.Taken {
		if t == id {
			return true
		}
	}
	return false
}

// Toggle returns a copy of the log with id's membership flipped. The
// receiver is left untouched.
func (l DailyLog) Toggle(id string) DailyLog {
	taken := make([]string, 0, len(l.Taken)+1)
	found := false
	for _, t := range l.Taken {
		if t == id {
			found = true
			continue
		}
		taken = append(taken, t)
	}
	if !found {
		taken = append(taken, id)
	}
	return DailyLog{Date: l.Date, Taken: taken}
}
