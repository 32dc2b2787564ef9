package medications

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("medication not found")
)

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	List(ctx context.Context) ([]Medication, error)
	Delete(ctx context.Context, id string) error

	ListTypes(ctx context.Context) ([]MedicationType, error)
	GetTypeByID(ctx context.Context, id string) (MedicationType, error)
	// SeedTypes inserta los tipos que aún no existan; los presentes no se tocan.
	SeedTypes(ctx context.Context, types []MedicationType) error
}
