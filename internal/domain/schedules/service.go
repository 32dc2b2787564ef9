package schedules

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/medications"
	"med-cabinet/internal/domain/recurrence"
	"med-cabinet/internal/platform/bus"
	"med-cabinet/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const maxDescriptionLen = 256

type SortBy string

const (
	SortByMedication SortBy = "medication" // por nombre de medicamento (default)
	SortByStartDate  SortBy = "startDate"
	SortByTime       SortBy = "time"
)

// MedicationLookup es lo único que el catálogo de horarios necesita del
// catálogo de medicamentos.
type MedicationLookup interface {
	GetByID(ctx context.Context, id string) (medications.Medication, error)
}

type Service struct {
	repo Repository
	meds MedicationLookup
	bus  *bus.Bus
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, meds MedicationLookup, b *bus.Bus, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		meds: meds,
		bus:  b,
		log:  log,
		now:  time.Now,
	}
}

type CreateInput struct {
	MedicationID      string
	Dose              decimal.Decimal
	StartingAt        time.Time
	EndingAtInclusive *time.Time
	Recurrence        recurrence.Rule
	Time              recurrence.TimeOfDay
	Description       string
}

func (s *Service) validate(ctx context.Context, in *CreateInput) error {
	in.MedicationID = strings.TrimSpace(in.MedicationID)
	if _, err := s.meds.GetByID(ctx, in.MedicationID); err != nil {
		return fmt.Errorf("%w: medication %q", ErrInvalidInput, in.MedicationID)
	}
	if !in.Dose.IsPositive() {
		return fmt.Errorf("%w: dose must be positive", ErrInvalidInput)
	}
	if err := in.Recurrence.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.StartingAt.IsZero() {
		return fmt.Errorf("%w: startingAt required", ErrInvalidInput)
	}
	if len(in.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description longer than %d chars", ErrInvalidInput, maxDescriptionLen)
	}

	// La recurrencia se evalúa por día: se persiste todo a medianoche.
	in.StartingAt = recurrence.Midnight(in.StartingAt)
	if in.EndingAtInclusive != nil {
		e := recurrence.Midnight(*in.EndingAtInclusive)
		if e.Before(in.StartingAt) {
			return fmt.Errorf("%w: endingAtInclusive before startingAt", ErrInvalidInput)
		}
		in.EndingAtInclusive = &e
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Schedule, error) {
	if err := s.validate(ctx, &in); err != nil {
		return Schedule{}, err
	}

	now := s.now()
	sch := Schedule{
		ID:                uuid.NewString(),
		MedicationID:      in.MedicationID,
		Dose:              in.Dose,
		StartingAt:        in.StartingAt,
		EndingAtInclusive: in.EndingAtInclusive,
		Recurrence:        in.Recurrence,
		Time:              in.Time,
		Description:       strings.TrimSpace(in.Description),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, sch); err != nil {
		return Schedule{}, err
	}
	return sch, nil
}

func (s *Service) Edit(ctx context.Context, id string, in CreateInput) (Schedule, error) {
	sch, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Schedule{}, err
	}
	if err := s.validate(ctx, &in); err != nil {
		return Schedule{}, err
	}

	sch.MedicationID = in.MedicationID
	sch.Dose = in.Dose
	sch.StartingAt = in.StartingAt
	sch.EndingAtInclusive = in.EndingAtInclusive
	sch.Recurrence = in.Recurrence
	sch.Time = in.Time
	sch.Description = strings.TrimSpace(in.Description)
	sch.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, sch); err != nil {
		return Schedule{}, err
	}
	return sch, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Schedule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Schedule{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Schedule, error) {
	return s.repo.List(ctx)
}

// FindAll lista horarios unidos con su medicamento, ordenados por el campo
// pedido. El orden descendente envuelve al comparador ascendente; los empates
// conservan el orden subyacente.
func (s *Service) FindAll(ctx context.Context, sortBy SortBy, desc bool) ([]Entry, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(items))
	for _, sch := range items {
		m, err := s.meds.GetByID(ctx, sch.MedicationID)
		if err != nil {
			// Un horario sin medicamento es un huérfano de cascada; no rompe el listado.
			s.log.Warn("schedule references missing medication", map[string]any{
				"schedule_id":   sch.ID,
				"medication_id": sch.MedicationID,
			})
			continue
		}
		out = append(out, Entry{Schedule: sch, Medication: m})
	}

	var less func(i, j int) bool
	switch sortBy {
	case SortByStartDate:
		less = func(i, j int) bool { return out[i].StartingAt.Before(out[j].StartingAt) }
	case SortByTime:
		less = func(i, j int) bool {
			ti, tj := out[i].Time, out[j].Time
			if ti.Hour != tj.Hour {
				return ti.Hour < tj.Hour
			}
			return ti.Minute < tj.Minute
		}
	default:
		less = func(i, j int) bool {
			return strings.ToLower(out[i].Medication.Name) < strings.ToLower(out[j].Medication.Name)
		}
	}
	if desc {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(out, less)

	return out, nil
}

// Delete borra el horario y publica ScheduleDeleted para que las tomas
// registradas del horario se borren en cascada.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bus.Publish(ctx, bus.ScheduleDeleted{ScheduleID: id})
	return nil
}

// DeleteByMedication corre como parte de la cascada de MedicationDeleted.
// Es best-effort: un fallo se registra pero no deshace el borrado original.
func (s *Service) DeleteByMedication(ctx context.Context, medicationID string) {
	if err := s.repo.DeleteByMedication(ctx, medicationID); err != nil {
		s.log.Error("cascade delete of schedules failed", map[string]any{
			"medication_id": medicationID,
			"error":         err.Error(),
		})
	}
}

func (s *Service) ListByMedication(ctx context.Context, medicationID string) ([]Schedule, error) {
	return s.repo.ListByMedication(ctx, medicationID)
}
