package cabinet

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("cabinet entry not found")
)

type Repository interface {
	Create(ctx context.Context, e Entry) error
	Update(ctx context.Context, e Entry) error
	// UpdateBatch persiste varios lotes como una sola escritura (el descuento
	// FEFO toca varios lotes y se guarda en bloque).
	UpdateBatch(ctx context.Context, entries []Entry) error
	GetByID(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	ListByMedication(ctx context.Context, medicationID string) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	DeleteByMedication(ctx context.Context, medicationID string) error
}
