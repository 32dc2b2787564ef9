package intakes

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("completed intake not found")
)

type Repository interface {
	Create(ctx context.Context, c CompletedIntake) error
	// GetByScheduleAndDate busca por igualdad exacta del timestamp de la
	// ocurrencia (no es una ventana).
	GetByScheduleAndDate(ctx context.Context, scheduleID string, scheduledDate time.Time) (CompletedIntake, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]CompletedIntake, error)
	DeleteBySchedules(ctx context.Context, scheduleIDs []string) error
}
