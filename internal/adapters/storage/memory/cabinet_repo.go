package memory

import (
	"context"
	"errors"
	"sync"

	"med-cabinet/internal/domain/cabinet"
)

type cabinetRepo struct {
	mu   sync.RWMutex
	byID map[string]cabinet.Entry
}

func NewCabinetRepo() cabinet.Repository {
	return &cabinetRepo{
		byID: make(map[string]cabinet.Entry),
	}
}

func (r *cabinetRepo) Create(ctx context.Context, e cabinet.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("cabinet entry id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("cabinet entry already exists")
	}

	r.byID[e.ID] = e
	return nil
}

func (r *cabinetRepo) Update(ctx context.Context, e cabinet.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[e.ID]; !ok {
		return cabinet.ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

// UpdateBatch aplica todo o nada: si algún lote no existe, no se toca ninguno.
func (r *cabinetRepo) UpdateBatch(ctx context.Context, entries []cabinet.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		if _, ok := r.byID[e.ID]; !ok {
			return cabinet.ErrNotFound
		}
	}
	for _, e := range entries {
		r.byID[e.ID] = e
	}
	return nil
}

func (r *cabinetRepo) GetByID(ctx context.Context, id string) (cabinet.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return cabinet.Entry{}, cabinet.ErrNotFound
	}
	return e, nil
}

func (r *cabinetRepo) List(ctx context.Context) ([]cabinet.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cabinet.Entry, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	return out, nil
}

func (r *cabinetRepo) ListByMedication(ctx context.Context, medicationID string) ([]cabinet.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cabinet.Entry, 0)
	for _, e := range r.byID {
		if e.MedicationID == medicationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *cabinetRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return cabinet.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *cabinetRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.byID {
		if e.MedicationID == medicationID {
			delete(r.byID, id)
		}
	}
	return nil
}
