// Package adherence keeps the single-day record of which medications have
// been taken. The log is reset lazily: whenever it is read or toggled on a
// date other than its own, it is replaced by an empty log for today.
package adherence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/store"
)

// Tracker loads and persists the daily log document.
type Tracker struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the clock used to decide whether a log is stale.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a tracker backed by s.
func New(s store.Store, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		logger: logging.OrDiscard(logger),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Today returns the tracker's current local date.
func (t *Tracker) Today() string {
	return model.Today(t.now())
}

// LoadOrReset returns the log for today. A missing or unreadable log is
// replaced by an empty one, as is a log recorded on any other date. The
// replacement is persisted before it is returned.
func (t *Tracker) LoadOrReset(ctx context.Context, today string) (model.DailyLog, error) {
	body, err := t.store.GetDocument(ctx, store.KeyDailyLog)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return t.reset(ctx, today, "")
	case err != nil:
		return model.DailyLog{}, fmt.Errorf("loading daily log: %w", err)
	}

	var log model.DailyLog
	if err := json.Unmarshal(body, &log); err != nil {
		t.logger.Warn("daily log unreadable, starting fresh", slog.Any("error", err))
		return t.reset(ctx, today, "")
	}
	if log.Date != today {
		return t.reset(ctx, today, log.Date)
	}
	if log.Taken == nil {
		log.Taken = []string{}
	}
	return log, nil
}

// Toggle flips id's membership in log and persists the result. A log
// whose date is no longer today is discarded first, so the toggle lands on
// a fresh log for today.
func (t *Tracker) Toggle(ctx context.Context, log model.DailyLog, id string) (model.DailyLog, error) {
	today := t.Today()
	if log.Date != today {
		fresh, err := t.LoadOrReset(ctx, today)
		if err != nil {
			return model.DailyLog{}, err
		}
		log = fresh
	}

	next := log.Toggle(id)
	if err := t.save(ctx, next); err != nil {
		return model.DailyLog{}, err
	}
	t.logger.Debug("daily log toggled",
		slog.String("date", next.Date),
		slog.String("id", id),
		slog.Bool("taken", next.IsTaken(id)),
	)
	return next, nil
}

// IsTaken reports whether id is recorded as taken in log.
func IsTaken(log model.DailyLog, id string) bool {
	return log.IsTaken(id)
}

func (t *Tracker) reset(ctx context.Context, today, previous string) (model.DailyLog, error) {
	log := model.NewDailyLog(today)
	if err := t.save(ctx, log); err != nil {
		return model.DailyLog{}, err
	}
	if previous != "" {
		t.logger.Info("daily log rolled over",
			slog.String("from", previous),
			slog.String("to", today),
		)
	}
	return log, nil
}

func (t *Tracker) save(ctx context.Context, log model.DailyLog) error {
	body, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encoding daily log: %w", err)
	}
	if err := t.store.PutDocument(ctx, store.KeyDailyLog, body); err != nil {
		return fmt.Errorf("saving daily log: %w", err)
	}
	return nil
}
