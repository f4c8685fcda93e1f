package testutil

import (
	"testing"
	"time"

	"github.com/nhle/medreminder/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Clock returns a now function that reports the time held in *at, so tests
// can move the clock across midnight by assigning to it.
func Clock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}
