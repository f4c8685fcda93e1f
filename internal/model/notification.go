package model

import "time"

// Notification is an outbox record of a caregiver notification request.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// MedicationID links this notification to the medication that was taken.
	MedicationID string `json:"medication_id" db:"medication_id"`

	// Contact is the caregiver identifier (phone number) the message targets.
	Contact string `json:"contact" db:"contact"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Channel names the notifier that handled the request ("outbox", "mail").
	Channel string `json:"channel" db:"channel"`

	// CreatedAt is when the notification was requested.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
