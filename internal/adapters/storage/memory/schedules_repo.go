package memory

import (
	"context"
	"errors"
	"sync"

	"med-cabinet/internal/domain/schedules"
)

type schedulesRepo struct {
	mu   sync.RWMutex
	byID map[string]schedules.Schedule
}

func NewSchedulesRepo() schedules.Repository {
	return &schedulesRepo{
		byID: make(map[string]schedules.Schedule),
	}
}

func (r *schedulesRepo) Create(ctx context.Context, s schedules.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		return errors.New("schedule id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("schedule already exists")
	}

	r.byID[s.ID] = s
	return nil
}

func (r *schedulesRepo) Update(ctx context.Context, s schedules.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[s.ID]; !ok {
		return schedules.ErrNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *schedulesRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return schedules.Schedule{}, schedules.ErrNotFound
	}
	return s, nil
}

func (r *schedulesRepo) List(ctx context.Context) ([]schedules.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedules.Schedule, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out, nil
}

func (r *schedulesRepo) ListByMedication(ctx context.Context, medicationID string) ([]schedules.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedules.Schedule, 0)
	for _, s := range r.byID {
		if s.MedicationID == medicationID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *schedulesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return schedules.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *schedulesRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.byID {
		if s.MedicationID == medicationID {
			delete(r.byID, id)
		}
	}
	return nil
}
