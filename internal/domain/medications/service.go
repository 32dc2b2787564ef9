package medications

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"med-cabinet/internal/platform/bus"
	"med-cabinet/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Tipos de referencia sembrados al arrancar si no existen.
var seedTypes = []MedicationType{
	{ID: "capsule", Name: "Capsule", Unit: "capsule(s)", Individual: true},
	{ID: "tablet", Name: "Tablet", Unit: "tablet(s)", Individual: true},
	{ID: "injection", Name: "Injection", Unit: "ml", Individual: false},
	{ID: "syrup", Name: "Syrup", Unit: "ml", Individual: false},
	{ID: "drops", Name: "Drops", Unit: "drop(s)", Individual: true},
}

type Service struct {
	repo Repository
	bus  *bus.Bus
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, b *bus.Bus, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		bus:  b,
		log:  log,
		now:  time.Now,
	}
}

// SeedTypes deja disponible el catálogo de tipos; se llama una vez al arrancar.
func (s *Service) SeedTypes(ctx context.Context) error {
	return s.repo.SeedTypes(ctx, seedTypes)
}

type CreateInput struct {
	Name             string
	MedicationTypeID string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Medication, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}
	if _, err := s.repo.GetTypeByID(ctx, strings.TrimSpace(in.MedicationTypeID)); err != nil {
		return Medication{}, ErrInvalidInput
	}

	now := s.now()
	m := Medication{
		ID:               uuid.NewString(),
		Name:             strings.TrimSpace(in.Name),
		MedicationTypeID: strings.TrimSpace(in.MedicationTypeID),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) Edit(ctx context.Context, id string, in CreateInput) (Medication, error) {
	m, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Medication{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}
	if _, err := s.repo.GetTypeByID(ctx, strings.TrimSpace(in.MedicationTypeID)); err != nil {
		return Medication{}, ErrInvalidInput
	}

	m.Name = strings.TrimSpace(in.Name)
	m.MedicationTypeID = strings.TrimSpace(in.MedicationTypeID)
	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Medication, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Delete borra el medicamento y publica MedicationDeleted; los suscriptores
// cableados al arranque borran en cascada horarios, lotes y tomas.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("medication deleted, publishing cascade", map[string]any{"medication_id": id})
	s.bus.Publish(ctx, bus.MedicationDeleted{MedicationID: id})
	return nil
}

func (s *Service) ListTypes(ctx context.Context) ([]MedicationType, error) {
	return s.repo.ListTypes(ctx)
}

func (s *Service) GetType(ctx context.Context, id string) (MedicationType, error) {
	return s.repo.GetTypeByID(ctx, strings.TrimSpace(id))
}
