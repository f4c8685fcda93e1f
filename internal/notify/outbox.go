package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
)

// OutboxWriter is the part of the store the outbox notifier needs.
type OutboxWriter interface {
	CreateNotification(ctx context.Context, n model.Notification) error
}

// OutboxNotifier simulates delivery: the message is logged and kept in the
// local outbox table where the contacts screen can show it.
type OutboxNotifier struct {
	outbox OutboxWriter
	logger *slog.Logger
}

// NewOutboxNotifier creates an outbox notifier writing to w.
func NewOutboxNotifier(w OutboxWriter, logger *slog.Logger) *OutboxNotifier {
	return &OutboxNotifier{outbox: w, logger: logging.OrDiscard(logger)}
}

// AdherenceConfirmed implements Notifier.
func (o *OutboxNotifier) AdherenceConfirmed(ctx context.Context, ev Event) error {
	msg := Message(ev)
	o.logger.Info("simulated caregiver notification",
		slog.String("contact", ev.Contact),
		slog.String("message", msg),
	)

	err := o.outbox.CreateNotification(ctx, model.Notification{
		MedicationID: ev.Medication.ID,
		Contact:      ev.Contact,
		Message:      msg,
		Channel:      "outbox",
		CreatedAt:    ev.At,
	})
	if err != nil {
		return fmt.Errorf("recording notification: %w", err)
	}
	return nil
}
