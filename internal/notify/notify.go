// Package notify tells a caregiver that a medication was taken. Delivery
// is best effort: the caller never learns whether it succeeded.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
)

// Event describes a confirmed dose.
type Event struct {
	Medication model.Medication
	Contact    string
	At         time.Time
}

// Notifier delivers adherence confirmations to a caregiver.
type Notifier interface {
	AdherenceConfirmed(ctx context.Context, ev Event) error
}

// Message returns the caregiver-facing text for ev.
func Message(ev Event) string {
	return fmt.Sprintf("Your family member has taken %s, %s %s.",
		ev.Medication.Name, formatPills(ev.Medication.PillsPerTime), pillNoun(ev.Medication.PillsPerTime))
}

func formatPills(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func pillNoun(n float64) string {
	if n == 1 {
		return "pill"
	}
	return "pills"
}

// Multi fans an event out to every notifier. All of them are tried; their
// errors are joined.
type Multi []Notifier

// AdherenceConfirmed implements Notifier.
func (m Multi) AdherenceConfirmed(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.AdherenceConfirmed(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatcher runs notifications in the background with a deadline and
// only logs their outcome.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A nil notifier drops every event.
func NewDispatcher(n Notifier, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		notifier: n,
		timeout:  timeout,
		logger:   logging.OrDiscard(logger),
	}
}

// Send hands ev to the notifier on its own goroutine and returns at once.
func (d *Dispatcher) Send(ev Event) {
	if d == nil || d.notifier == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		attrs := []any{
			slog.String("medication_id", ev.Medication.ID),
			slog.String("contact", ev.Contact),
		}
		if err := d.notifier.AdherenceConfirmed(ctx, ev); err != nil {
			d.logger.Warn("caregiver notification failed", append(attrs, slog.Any("error", err))...)
			return
		}
		d.logger.Info("caregiver notified", attrs...)
	}()
}

// Wait blocks until every in-flight notification has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
