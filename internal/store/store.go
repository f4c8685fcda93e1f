package store

import (
	"context"
	"errors"

	"github.com/nhle/medreminder/internal/model"
)

// Fixed document keys. The version suffix matches the on-disk format of the
// medication registry and daily log so existing exports remain readable.
const (
	KeyMedications = "med_reminders_v6"
	KeyDailyLog    = "med_log_v6"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("store: document not found")

// Store defines the persistence interface: whole-document reads and writes
// keyed by name, plus the caregiver notification outbox.
type Store interface {
	// === Documents ===

	// GetDocument returns the raw JSON body stored under key, or
	// ErrNotFound.
	GetDocument(ctx context.Context, key string) ([]byte, error)

	// PutDocument replaces the document stored under key.
	PutDocument(ctx context.Context, key string, body []byte) error

	// === Notification outbox ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetNotifications(ctx context.Context, limit int) ([]model.Notification, error)
}
