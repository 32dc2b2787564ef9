package cabinet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/recurrence"
	"med-cabinet/internal/platform/logger"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

type CreateInput struct {
	MedicationID string
	Units        decimal.Decimal
	InitialUnits decimal.Decimal
	ExpiryDate   time.Time
}

func (in *CreateInput) validate() error {
	in.MedicationID = strings.TrimSpace(in.MedicationID)
	if in.MedicationID == "" {
		return fmt.Errorf("%w: medication id required", ErrInvalidInput)
	}
	if in.Units.IsNegative() {
		return fmt.Errorf("%w: units must be >= 0", ErrInvalidInput)
	}
	if in.InitialUnits.LessThan(in.Units) {
		return fmt.Errorf("%w: initialUnits must be >= units", ErrInvalidInput)
	}
	if in.ExpiryDate.IsZero() {
		return fmt.Errorf("%w: expiryDate required", ErrInvalidInput)
	}
	in.ExpiryDate = recurrence.Midnight(in.ExpiryDate)
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	if err := in.validate(); err != nil {
		return Entry{}, err
	}

	now := s.now()
	e := Entry{
		ID:           uuid.NewString(),
		MedicationID: in.MedicationID,
		Units:        in.Units,
		InitialUnits: in.InitialUnits,
		ExpiryDate:   in.ExpiryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) Edit(ctx context.Context, id string, in CreateInput) (Entry, error) {
	e, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Entry{}, err
	}
	if err := in.validate(); err != nil {
		return Entry{}, err
	}

	e.MedicationID = in.MedicationID
	e.Units = in.Units
	e.InitialUnits = in.InitialUnits
	e.ExpiryDate = in.ExpiryDate
	e.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// FindAll lista lotes; con medicationID no vacío filtra por medicamento.
func (s *Service) FindAll(ctx context.Context, medicationID string) ([]Entry, error) {
	if medicationID = strings.TrimSpace(medicationID); medicationID != "" {
		return s.repo.ListByMedication(ctx, medicationID)
	}
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SubtractUnits es la edición directa de un solo lote iniciada por el
// usuario. A diferencia de la cascada FEFO, este camino sí falla si el lote
// quedaría en negativo.
func (s *Service) SubtractUnits(ctx context.Context, id string, quantity decimal.Decimal) (Entry, error) {
	e, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Entry{}, err
	}
	if quantity.IsNegative() {
		return Entry{}, fmt.Errorf("%w: quantity must be >= 0", ErrInvalidInput)
	}

	rest := e.Units.Sub(quantity)
	if rest.IsNegative() {
		return Entry{}, fmt.Errorf("%w: %s units left, %s requested",
			ErrInsufficientStock, e.Units, quantity)
	}

	e.Units = rest
	e.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// SubtractByMedication descuenta quantity del stock de un medicamento con
// política FEFO: primero caduca, primero sale. Solo participan lotes con
// remanente y no caducados; empates de caducidad se resuelven agotando antes
// el lote con menos remanente. Lo que exceda el stock total se descarta en
// silencio: esto corre como cascada de una toma, no como edición del usuario,
// y el stock nunca queda negativo.
func (s *Service) SubtractByMedication(ctx context.Context, medicationID string, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return nil
	}

	lots, err := s.repo.ListByMedication(ctx, medicationID)
	if err != nil {
		return err
	}

	today := recurrence.Midnight(s.now())
	usable := make([]Entry, 0, len(lots))
	for _, l := range lots {
		if !l.Units.IsPositive() {
			continue
		}
		if recurrence.Midnight(l.ExpiryDate).Before(today) {
			continue // los lotes caducados nunca se descuentan solos
		}
		usable = append(usable, l)
	}

	sort.SliceStable(usable, func(i, j int) bool {
		ei, ej := recurrence.Midnight(usable[i].ExpiryDate), recurrence.Midnight(usable[j].ExpiryDate)
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		return usable[i].Units.LessThan(usable[j].Units)
	})

	now := s.now()
	remaining := quantity
	touched := make([]Entry, 0, len(usable))
	for i := range usable {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(usable[i].Units, remaining)
		usable[i].Units = usable[i].Units.Sub(take)
		usable[i].UpdatedAt = now
		remaining = remaining.Sub(take)
		touched = append(touched, usable[i])
	}

	if len(touched) == 0 {
		return nil
	}
	if err := s.repo.UpdateBatch(ctx, touched); err != nil {
		return err
	}

	s.log.Debug("stock subtracted", map[string]any{
		"medication_id": medicationID,
		"requested":     quantity.String(),
		"unfilled":      remaining.String(),
		"lots_touched":  len(touched),
	})
	return nil
}

// AggregateAvailableDoses agrupa todos los lotes por medicamento y devuelve
// el total disponible y la media de unidades iniciales por lote. Un
// medicamento sin lotes no aparece en el resultado.
func (s *Service) AggregateAvailableDoses(ctx context.Context) ([]Aggregate, error) {
	lots, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]Entry)
	for _, l := range lots {
		grouped[l.MedicationID] = append(grouped[l.MedicationID], l)
	}

	out := make([]Aggregate, 0, len(grouped))
	for medID, ls := range grouped {
		total := decimal.Zero
		initial := decimal.Zero
		for _, l := range ls {
			total = total.Add(l.Units)
			initial = initial.Add(l.InitialUnits)
		}
		out = append(out, Aggregate{
			MedicationID:       medID,
			TotalAvailableDose: total,
			AverageInitialDose: initial.DivRound(decimal.NewFromInt(int64(len(ls))), 4),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].MedicationID < out[j].MedicationID })
	return out, nil
}

// DeleteByMedication corre como parte de la cascada de MedicationDeleted;
// best-effort, el fallo solo se registra.
func (s *Service) DeleteByMedication(ctx context.Context, medicationID string) {
	if err := s.repo.DeleteByMedication(ctx, medicationID); err != nil {
		s.log.Error("cascade delete of cabinet entries failed", map[string]any{
			"medication_id": medicationID,
			"error":         err.Error(),
		})
	}
}
