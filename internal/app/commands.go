package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/registry"
	"github.com/nhle/medreminder/internal/reminder"
	"github.com/nhle/medreminder/internal/ui/contacts"
	"github.com/nhle/medreminder/internal/ui/dashboard"
)

// outboxLimit is how many sent caregiver messages the contacts view lists.
const outboxLimit = 20

type toggledMsg struct {
	result reminder.ToggleResult
	err    error
}

type savedMsg struct {
	med model.Medication
	err error
}

type removedMsg struct {
	name    string
	removed bool
	err     error
}

// loadDay returns a command that derives today's view from the store.
func (m Model) loadDay() tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		day, err := svc.Today(context.Background())
		return dashboard.DayLoadedMsg{Day: day, Now: svc.Now(), Err: err}
	}
}

// toggle returns a command that flips the taken state of medication id.
func (m Model) toggle(id string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		res, err := svc.ToggleTaken(context.Background(), id)
		return toggledMsg{result: res, err: err}
	}
}

// save returns a command that validates and stores a new medication.
func (m Model) save(draft model.Medication) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		med, err := svc.SaveMedication(context.Background(), draft)
		return savedMsg{med: med, err: err}
	}
}

// remove returns a command that deletes med. The user has already
// approved the removal in the dashboard dialog.
func (m Model) remove(med model.Medication) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		removed, err := svc.RemoveMedication(context.Background(), med.ID, registry.Confirmed)
		return removedMsg{name: med.Name, removed: removed, err: err}
	}
}

// loadOutbox returns a command that fetches recent caregiver messages.
func (m Model) loadOutbox() tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ns, err := svc.Outbox(context.Background(), outboxLimit)
		return contacts.OutboxLoadedMsg{Notifications: ns, Err: err}
	}
}
