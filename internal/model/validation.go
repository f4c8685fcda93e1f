package model

import (
	"fmt"
	"strings"
)

// ValidationReason names the save-time constraint a medication violated.
type ValidationReason string

const (
	ReasonNameRequired       ValidationReason = "name_required"
	ReasonPeriodsRequired    ValidationReason = "periods_required"
	ReasonRepeatDaysRequired ValidationReason = "repeat_days_required"
	ReasonContactRequired    ValidationReason = "contact_required"
	ReasonInvalidQuantity    ValidationReason = "invalid_quantity"
	ReasonInvalidPeriod      ValidationReason = "invalid_period"
	ReasonInvalidWeekday     ValidationReason = "invalid_weekday"
)

var reasonMessages = map[ValidationReason]string{
	ReasonNameRequired:       "Please enter the medication name",
	ReasonPeriodsRequired:    "Please choose at least one time of day",
	ReasonRepeatDaysRequired: "Please choose at least one day",
	ReasonContactRequired:    "Please enter the caregiver phone number for notifications",
	ReasonInvalidQuantity:    "Pills per time must be a multiple of 0.5, at least 0.5",
	ReasonInvalidPeriod:      "Unknown time of day",
	ReasonInvalidWeekday:     "Days must be between Sunday (0) and Saturday (6)",
}

// ValidationError reports a violated save-time constraint.
type ValidationError struct {
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	msg := reasonMessages[e.Reason]
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

// Message returns the user-facing text for the violation.
func (e *ValidationError) Message() string {
	return reasonMessages[e.Reason]
}

// Validate checks the save-time constraints. The first violation found is
// returned, in the same order the add form reports them.
func (m Medication) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return &ValidationError{Reason: ReasonNameRequired}
	}
	if len(m.Periods) == 0 {
		return &ValidationError{Reason: ReasonPeriodsRequired}
	}
	if len(m.RepeatDays) == 0 {
		return &ValidationError{Reason: ReasonRepeatDaysRequired}
	}
	if m.SyncRelative && strings.TrimSpace(m.RelativeContact) == "" {
		return &ValidationError{Reason: ReasonContactRequired}
	}
	for _, p := range m.Periods {
		if !p.Valid() {
			return &ValidationError{Reason: ReasonInvalidPeriod, Detail: string(p)}
		}
	}
	for _, d := range m.RepeatDays {
		if d < 0 || d > 6 {
			return &ValidationError{Reason: ReasonInvalidWeekday, Detail: fmt.Sprint(d)}
		}
	}
	if !ValidPills(m.PillsPerTime) {
		return &ValidationError{Reason: ReasonInvalidQuantity, Detail: fmt.Sprint(m.PillsPerTime)}
	}
	return nil
}
