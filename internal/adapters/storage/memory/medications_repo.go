package memory

import (
	"context"
	"errors"
	"sync"

	"med-cabinet/internal/domain/medications"
)

type medicationsRepo struct {
	mu      sync.RWMutex
	byID    map[string]medications.Medication
	typesID map[string]medications.MedicationType
}

func NewMedicationsRepo() medications.Repository {
	return &medicationsRepo{
		byID:    make(map[string]medications.Medication),
		typesID: make(map[string]medications.MedicationType),
	}
}

func (r *medicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		return errors.New("medication id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("medication already exists")
	}

	r.byID[m.ID] = m
	return nil
}

func (r *medicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.ID]; !ok {
		return medications.ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, nil
}

func (r *medicationsRepo) List(ctx context.Context) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out, nil
}

func (r *medicationsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return medications.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *medicationsRepo) ListTypes(ctx context.Context) ([]medications.MedicationType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.MedicationType, 0, len(r.typesID))
	for _, t := range r.typesID {
		out = append(out, t)
	}
	return out, nil
}

func (r *medicationsRepo) GetTypeByID(ctx context.Context, id string) (medications.MedicationType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.typesID[id]
	if !ok {
		return medications.MedicationType{}, medications.ErrNotFound
	}
	return t, nil
}

func (r *medicationsRepo) SeedTypes(ctx context.Context, types []medications.MedicationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range types {
		if _, exists := r.typesID[t.ID]; exists {
			continue
		}
		r.typesID[t.ID] = t
	}
	return nil
}
