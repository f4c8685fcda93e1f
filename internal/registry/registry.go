// Package registry owns the medication list document: an insertion-ordered
// sequence of medications that is rewritten in full on every change.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/store"
)

// ErrRemovalDeclined is returned when the confirmer refuses a removal.
var ErrRemovalDeclined = errors.New("registry: removal declined")

// ErrDuplicateID is returned when adding a medication whose id is already
// registered.
var ErrDuplicateID = errors.New("registry: duplicate medication id")

// Confirmer approves destructive changes before they are committed.
type Confirmer interface {
	ConfirmRemoval(m model.Medication) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(m model.Medication) bool

// ConfirmRemoval calls f(m).
func (f ConfirmFunc) ConfirmRemoval(m model.Medication) bool { return f(m) }

// Confirmed is a Confirmer for a removal the user has already approved,
// for example through a dialog that resolved before the call.
var Confirmed Confirmer = ConfirmFunc(func(model.Medication) bool { return true })

// Registry reads and writes the medication list document.
type Registry struct {
	store  store.Store
	logger *slog.Logger
	newID  func() string
}

// New creates a registry backed by s.
func New(s store.Store, logger *slog.Logger) *Registry {
	return &Registry{
		store:  s,
		logger: logging.OrDiscard(logger),
		newID:  func() string { return uuid.New().String() },
	}
}

// List returns the stored medications in insertion order. It returns an
// empty slice when nothing has been saved yet.
func (r *Registry) List(ctx context.Context) ([]model.Medication, error) {
	body, err := r.store.GetDocument(ctx, store.KeyMedications)
	if errors.Is(err, store.ErrNotFound) {
		return []model.Medication{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading medications: %w", err)
	}

	var meds []model.Medication
	if err := json.Unmarshal(body, &meds); err != nil {
		return nil, fmt.Errorf("decoding medications: %w", err)
	}
	if meds == nil {
		meds = []model.Medication{}
	}
	for i := range meds {
		meds[i] = meds[i].Normalize()
	}
	return meds, nil
}

// Get returns the medication with the given id.
func (r *Registry) Get(ctx context.Context, id string) (model.Medication, bool, error) {
	meds, err := r.List(ctx)
	if err != nil {
		return model.Medication{}, false, err
	}
	for _, m := range meds {
		if m.ID == id {
			return m, true, nil
		}
	}
	return model.Medication{}, false, nil
}

// Add appends m and persists the full list. A medication that fails
// validation is rejected with a *model.ValidationError and nothing is
// written.
func (r *Registry) Add(ctx context.Context, m model.Medication) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ID == "" {
		return fmt.Errorf("adding medication %q: id is required", m.Name)
	}

	meds, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, existing := range meds {
		if existing.ID == m.ID {
			return fmt.Errorf("adding medication %q: %w", m.ID, ErrDuplicateID)
		}
	}
	meds = append(meds, m.Normalize())

	if err := r.save(ctx, meds); err != nil {
		return err
	}
	r.logger.Info("medication added",
		slog.String("id", m.ID),
		slog.String("name", m.Name),
		slog.Int("count", len(meds)),
	)
	return nil
}

// Create turns a draft into a stored medication: it assigns a fresh id,
// derives reminder times and enables doctor sync, then adds it.
func (r *Registry) Create(ctx context.Context, draft model.Medication) (model.Medication, error) {
	m := draft
	m.ID = r.newID()
	m.SyncDoctor = true
	if !m.SyncRelative {
		m.RelativeContact = ""
	}
	m = m.Normalize()

	if err := r.Add(ctx, m); err != nil {
		return model.Medication{}, err
	}
	return m, nil
}

// Remove deletes the medication with the given id after confirm approves.
// A missing id is a no-op and reports false. Declining returns
// ErrRemovalDeclined and leaves the list unchanged.
func (r *Registry) Remove(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	meds, err := r.List(ctx)
	if err != nil {
		return false, err
	}

	idx := -1
	for i, m := range meds {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	if confirm == nil || !confirm.ConfirmRemoval(meds[idx]) {
		return false, ErrRemovalDeclined
	}

	kept := make([]model.Medication, 0, len(meds)-1)
	kept = append(kept, meds[:idx]...)
	kept = append(kept, meds[idx+1:]...)

	if err := r.save(ctx, kept); err != nil {
		return false, err
	}
	r.logger.Info("medication removed", slog.String("id", id), slog.Int("count", len(kept)))
	return true, nil
}

func (r *Registry) save(ctx context.Context, meds []model.Medication) error {
	body, err := json.Marshal(meds)
	if err != nil {
		return fmt.Errorf("encoding medications: %w", err)
	}
	if err := r.store.PutDocument(ctx, store.KeyMedications, body); err != nil {
		return fmt.Errorf("saving medications: %w", err)
	}
	return nil
}
