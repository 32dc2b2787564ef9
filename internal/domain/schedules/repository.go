package schedules

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("schedule not found")
)

type Repository interface {
	Create(ctx context.Context, s Schedule) error
	Update(ctx context.Context, s Schedule) error
	GetByID(ctx context.Context, id string) (Schedule, error)
	List(ctx context.Context) ([]Schedule, error)
	ListByMedication(ctx context.Context, medicationID string) ([]Schedule, error)
	Delete(ctx context.Context, id string) error
	DeleteByMedication(ctx context.Context, medicationID string) error
}
