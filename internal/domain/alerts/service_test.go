package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/cabinet"
	"med-cabinet/internal/domain/intakes"
	"med-cabinet/internal/domain/medications"
	"med-cabinet/internal/domain/planner"
	"med-cabinet/internal/domain/recurrence"
	"med-cabinet/internal/domain/schedules"
	"med-cabinet/internal/platform/bus"
	"med-cabinet/internal/platform/logger"
)

// -------------------------
// Fakes
// -------------------------

type fakeScheduleRepo struct {
	items []schedules.Schedule
}

func (r *fakeScheduleRepo) Create(ctx context.Context, s schedules.Schedule) error { return nil }
func (r *fakeScheduleRepo) Update(ctx context.Context, s schedules.Schedule) error { return nil }
func (r *fakeScheduleRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	return schedules.Schedule{}, schedules.ErrNotFound
}
func (r *fakeScheduleRepo) List(ctx context.Context) ([]schedules.Schedule, error) {
	return r.items, nil
}
func (r *fakeScheduleRepo) ListByMedication(ctx context.Context, medicationID string) ([]schedules.Schedule, error) {
	return nil, nil
}
func (r *fakeScheduleRepo) Delete(ctx context.Context, id string) error                 { return nil }
func (r *fakeScheduleRepo) DeleteByMedication(ctx context.Context, medID string) error { return nil }

type fakeMeds struct{}

func (fakeMeds) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	return medications.Medication{ID: id, Name: "med-" + id}, nil
}

type fakeIntakeRepo struct{}

func (fakeIntakeRepo) Create(ctx context.Context, c intakes.CompletedIntake) error { return nil }
func (fakeIntakeRepo) GetByScheduleAndDate(ctx context.Context, scheduleID string, scheduledDate time.Time) (intakes.CompletedIntake, error) {
	return intakes.CompletedIntake{}, intakes.ErrNotFound
}
func (fakeIntakeRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]intakes.CompletedIntake, error) {
	return nil, nil
}
func (fakeIntakeRepo) DeleteBySchedules(ctx context.Context, scheduleIDs []string) error { return nil }

type fakeCabinetRepo struct {
	items []cabinet.Entry
}

func (r *fakeCabinetRepo) Create(ctx context.Context, e cabinet.Entry) error        { return nil }
func (r *fakeCabinetRepo) Update(ctx context.Context, e cabinet.Entry) error        { return nil }
func (r *fakeCabinetRepo) UpdateBatch(ctx context.Context, es []cabinet.Entry) error { return nil }
func (r *fakeCabinetRepo) GetByID(ctx context.Context, id string) (cabinet.Entry, error) {
	return cabinet.Entry{}, cabinet.ErrNotFound
}
func (r *fakeCabinetRepo) List(ctx context.Context) ([]cabinet.Entry, error) { return r.items, nil }
func (r *fakeCabinetRepo) ListByMedication(ctx context.Context, medicationID string) ([]cabinet.Entry, error) {
	return nil, nil
}
func (r *fakeCabinetRepo) Delete(ctx context.Context, id string) error                 { return nil }
func (r *fakeCabinetRepo) DeleteByMedication(ctx context.Context, medID string) error { return nil }

func newService(schRepo *fakeScheduleRepo, cabRepo *fakeCabinetRepo) *Service {
	catalog := schedules.NewService(schRepo, fakeMeds{}, bus.New(), logger.Nop())
	resolver := intakes.NewResolver(catalog, fakeIntakeRepo{}, logger.Nop())
	stock := cabinet.NewService(cabRepo, logger.Nop())
	projector := planner.NewService(resolver, stock, fakeMeds{}, logger.Nop())
	return NewService(stock, projector, fakeMeds{}, logger.Nop())
}

// -------------------------
// Expiry alerts
// -------------------------

func TestFindAllAlerts_ExpiredLotYieldsSingleError(t *testing.T) {
	today := recurrence.Midnight(time.Now())

	cabRepo := &fakeCabinetRepo{items: []cabinet.Entry{
		{
			ID:           "lot1",
			MedicationID: "m1",
			Units:        decimal.NewFromInt(3),
			InitialUnits: decimal.NewFromInt(10),
			ExpiryDate:   today.AddDate(0, 0, -1), // caducó ayer
		},
	}}
	svc := newService(&fakeScheduleRepo{}, cabRepo)

	got, err := svc.FindAllAlerts(context.Background())
	if err != nil {
		t.Fatalf("FindAllAlerts: %v", err)
	}

	// Exactamente una alerta: el error absorbe al aviso, nunca salen ambos.
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d: %+v", len(got), got)
	}
	if got[0].Type != TypeExpiryError {
		t.Fatalf("type = %s, want %s", got[0].Type, TypeExpiryError)
	}
}

func TestFindAllAlerts_ExpiryWarningWithinWindow(t *testing.T) {
	today := recurrence.Midnight(time.Now())

	cabRepo := &fakeCabinetRepo{items: []cabinet.Entry{
		{ID: "soon", MedicationID: "m1", Units: decimal.NewFromInt(3),
			InitialUnits: decimal.NewFromInt(10), ExpiryDate: today.AddDate(0, 0, 7)},
		{ID: "far", MedicationID: "m1", Units: decimal.NewFromInt(3),
			InitialUnits: decimal.NewFromInt(10), ExpiryDate: today.AddDate(0, 0, 8)},
		{ID: "empty", MedicationID: "m1", Units: decimal.Zero,
			InitialUnits: decimal.NewFromInt(10), ExpiryDate: today.AddDate(0, 0, -1)},
	}}
	svc := newService(&fakeScheduleRepo{}, cabRepo)

	got, err := svc.FindAllAlerts(context.Background())
	if err != nil {
		t.Fatalf("FindAllAlerts: %v", err)
	}

	// Solo el lote que cae dentro de la ventana de 7 días (borde incluido);
	// los lotes vacíos nunca alertan.
	if len(got) != 1 {
		t.Fatalf("expected 1 alert, got %d: %+v", len(got), got)
	}
	if got[0].Type != TypeExpiryWarning {
		t.Fatalf("type = %s, want %s", got[0].Type, TypeExpiryWarning)
	}
}

// -------------------------
// Stock alerts
// -------------------------

func TestFindAllAlerts_StockErrorWhenNothingAvailable(t *testing.T) {
	today := recurrence.Midnight(time.Now())

	schRepo := &fakeScheduleRepo{items: []schedules.Schedule{
		{
			ID:           "s1",
			MedicationID: "m1",
			Dose:         decimal.NewFromInt(1),
			StartingAt:   today,
			Recurrence:   recurrence.Rule{Type: recurrence.TypeDaily, Units: 1},
		},
	}}
	svc := newService(schRepo, &fakeCabinetRepo{})

	got, err := svc.FindAllAlerts(context.Background())
	if err != nil {
		t.Fatalf("FindAllAlerts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 alert, got %d: %+v", len(got), got)
	}
	if got[0].Type != TypeStockError {
		t.Fatalf("type = %s, want %s", got[0].Type, TypeStockError)
	}
}

func TestFindAllAlerts_SortedByType(t *testing.T) {
	today := recurrence.Midnight(time.Now())

	schRepo := &fakeScheduleRepo{items: []schedules.Schedule{
		{
			ID:           "s1",
			MedicationID: "m1",
			Dose:         decimal.NewFromInt(2),
			StartingAt:   today,
			Recurrence:   recurrence.Rule{Type: recurrence.TypeDaily, Units: 1},
		},
	}}
	cabRepo := &fakeCabinetRepo{items: []cabinet.Entry{
		// Aviso de caducidad y aviso de stock (hay algo, pero no alcanza).
		{ID: "lot1", MedicationID: "m1", Units: decimal.NewFromInt(2),
			InitialUnits: decimal.NewFromInt(10), ExpiryDate: today.AddDate(0, 0, 5)},
	}}
	svc := newService(schRepo, cabRepo)

	got, err := svc.FindAllAlerts(context.Background())
	if err != nil {
		t.Fatalf("FindAllAlerts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 alerts, got %d: %+v", len(got), got)
	}
	if got[0].Type != TypeExpiryWarning || got[1].Type != TypeStockWarning {
		t.Fatalf("wrong order: %s, %s", got[0].Type, got[1].Type)
	}
}
