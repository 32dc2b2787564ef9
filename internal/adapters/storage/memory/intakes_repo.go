package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"med-cabinet/internal/domain/intakes"
)

type intakesRepo struct {
	mu   sync.RWMutex
	byID map[string]intakes.CompletedIntake
}

func NewIntakesRepo() intakes.Repository {
	return &intakesRepo{
		byID: make(map[string]intakes.CompletedIntake),
	}
}

func (r *intakesRepo) Create(ctx context.Context, c intakes.CompletedIntake) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("completed intake id required")
	}
	// No hay chequeo de unicidad por (scheduleId, scheduledDate): completar
	// dos veces la misma ocurrencia inserta dos registros.
	r.byID[c.ID] = c
	return nil
}

func (r *intakesRepo) GetByScheduleAndDate(ctx context.Context, scheduleID string, scheduledDate time.Time) (intakes.CompletedIntake, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if c.ScheduleID == scheduleID && c.ScheduledDate.Equal(scheduledDate) {
			return c, nil
		}
	}
	return intakes.CompletedIntake{}, intakes.ErrNotFound
}

func (r *intakesRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]intakes.CompletedIntake, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]intakes.CompletedIntake, 0)
	for _, c := range r.byID {
		if c.ScheduleID == scheduleID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *intakesRepo) DeleteBySchedules(ctx context.Context, scheduleIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := make(map[string]bool, len(scheduleIDs))
	for _, id := range scheduleIDs {
		drop[id] = true
	}
	for id, c := range r.byID {
		if drop[c.ScheduleID] {
			delete(r.byID, id)
		}
	}
	return nil
}
