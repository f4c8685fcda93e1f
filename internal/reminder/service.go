// Package reminder is the application service the UI talks to. It owns
// the registry, the daily log tracker and the caregiver notifier, and
// threads the clock through every operation.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nhle/medreminder/internal/adherence"
	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/notify"
	"github.com/nhle/medreminder/internal/registry"
	"github.com/nhle/medreminder/internal/schedule"
	"github.com/nhle/medreminder/internal/store"
)

// Service wires the medication registry, the adherence log and caregiver
// notifications together.
type Service struct {
	store      store.Store
	registry   *registry.Registry
	tracker    *adherence.Tracker
	dispatcher *notify.Dispatcher
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDispatcher sets how caregiver notifications are delivered. Without
// one, confirmations are not sent anywhere.
func WithDispatcher(d *notify.Dispatcher) Option {
	return func(s *Service) { s.dispatcher = d }
}

// New builds a service over st.
func New(st store.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		now:    time.Now,
		logger: logging.OrDiscard(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = registry.New(st, s.logger)
	s.tracker = adherence.New(st, s.logger, adherence.WithClock(s.now))
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Today loads (or resets) the daily log and derives today's view.
func (s *Service) Today(ctx context.Context) (schedule.Day, error) {
	now := s.now()
	log, err := s.tracker.LoadOrReset(ctx, model.Today(now))
	if err != nil {
		return schedule.Day{}, err
	}
	meds, err := s.registry.List(ctx)
	if err != nil {
		return schedule.Day{}, err
	}
	return schedule.Build(meds, log, now), nil
}

// Medications returns every registered medication in insertion order.
func (s *Service) Medications(ctx context.Context) ([]model.Medication, error) {
	return s.registry.List(ctx)
}

// ToggleResult describes the outcome of a taken/untaken toggle.
type ToggleResult struct {
	Log        model.DailyLog
	Medication model.Medication
	Taken      bool
	Notified   bool
	Message    string
}

// ToggleTaken flips whether the medication with id has been taken today.
// Marking a dose taken for a medication with caregiver sync hands a
// notification to the dispatcher; unmarking never notifies.
func (s *Service) ToggleTaken(ctx context.Context, id string) (ToggleResult, error) {
	now := s.now()
	log, err := s.tracker.LoadOrReset(ctx, model.Today(now))
	if err != nil {
		return ToggleResult{}, err
	}

	med, found, err := s.registry.Get(ctx, id)
	if err != nil {
		return ToggleResult{}, err
	}

	next, err := s.tracker.Toggle(ctx, log, id)
	if err != nil {
		return ToggleResult{}, err
	}

	res := ToggleResult{
		Log:        next,
		Medication: med,
		Taken:      next.IsTaken(id),
	}
	if !res.Taken {
		res.Message = "Marked as not taken."
		return res, nil
	}

	res.Message = "Well done! Medication taken."
	contact := strings.TrimSpace(med.RelativeContact)
	if found && med.SyncRelative && contact != "" {
		s.dispatcher.Send(notify.Event{Medication: med, Contact: contact, At: now})
		res.Notified = s.dispatcher != nil
		if res.Notified {
			res.Message += fmt.Sprintf(" Caregiver at %s has been notified.", contact)
		}
	}
	return res, nil
}

// SaveMedication validates and stores a new medication built from draft.
// Validation failures come back as *model.ValidationError.
func (s *Service) SaveMedication(ctx context.Context, draft model.Medication) (model.Medication, error) {
	return s.registry.Create(ctx, draft)
}

// RemoveMedication deletes the medication after confirm approves. Its id
// stays in today's log until the next reset.
func (s *Service) RemoveMedication(ctx context.Context, id string, confirm registry.Confirmer) (bool, error) {
	return s.registry.Remove(ctx, id, confirm)
}

// Outbox returns the most recent recorded caregiver notifications.
func (s *Service) Outbox(ctx context.Context, limit int) ([]model.Notification, error) {
	return s.store.GetNotifications(ctx, limit)
}
