package intakes

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/medications"
	"med-cabinet/internal/domain/recurrence"
	"med-cabinet/internal/domain/schedules"
	"med-cabinet/internal/platform/bus"
	"med-cabinet/internal/platform/logger"
)

// -------------------------
// Fakes
// -------------------------

type fakeScheduleRepo struct {
	byID map[string]schedules.Schedule
}

func (r *fakeScheduleRepo) Create(ctx context.Context, s schedules.Schedule) error {
	r.byID[s.ID] = s
	return nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, s schedules.Schedule) error {
	r.byID[s.ID] = s
	return nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	s, ok := r.byID[id]
	if !ok {
		return schedules.Schedule{}, schedules.ErrNotFound
	}
	return s, nil
}

func (r *fakeScheduleRepo) List(ctx context.Context) ([]schedules.Schedule, error) {
	out := make([]schedules.Schedule, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListByMedication(ctx context.Context, medicationID string) ([]schedules.Schedule, error) {
	out := make([]schedules.Schedule, 0)
	for _, s := range r.byID {
		if s.MedicationID == medicationID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeScheduleRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	for id, s := range r.byID {
		if s.MedicationID == medicationID {
			delete(r.byID, id)
		}
	}
	return nil
}

type fakeMeds struct{}

func (fakeMeds) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	return medications.Medication{ID: id, Name: "med-" + id, MedicationTypeID: "capsule"}, nil
}

type fakeIntakeRepo struct {
	records []CompletedIntake
}

func (r *fakeIntakeRepo) Create(ctx context.Context, c CompletedIntake) error {
	r.records = append(r.records, c)
	return nil
}

func (r *fakeIntakeRepo) GetByScheduleAndDate(ctx context.Context, scheduleID string, scheduledDate time.Time) (CompletedIntake, error) {
	for _, c := range r.records {
		if c.ScheduleID == scheduleID && c.ScheduledDate.Equal(scheduledDate) {
			return c, nil
		}
	}
	return CompletedIntake{}, ErrNotFound
}

func (r *fakeIntakeRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]CompletedIntake, error) {
	out := make([]CompletedIntake, 0)
	for _, c := range r.records {
		if c.ScheduleID == scheduleID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeIntakeRepo) DeleteBySchedules(ctx context.Context, scheduleIDs []string) error {
	keep := r.records[:0]
	for _, c := range r.records {
		drop := false
		for _, id := range scheduleIDs {
			if c.ScheduleID == id {
				drop = true
				break
			}
		}
		if !drop {
			keep = append(keep, c)
		}
	}
	r.records = keep
	return nil
}

// -------------------------
// Helpers
// -------------------------

var testToday = time.Date(2024, 4, 10, 9, 30, 0, 0, time.UTC)

func newFixture() (*fakeScheduleRepo, *fakeIntakeRepo, *Resolver, *Workflow, *bus.Bus) {
	schRepo := &fakeScheduleRepo{byID: map[string]schedules.Schedule{}}
	intRepo := &fakeIntakeRepo{}
	b := bus.New()

	catalog := schedules.NewService(schRepo, fakeMeds{}, b, logger.Nop())
	resolver := NewResolver(catalog, intRepo, logger.Nop())
	resolver.now = func() time.Time { return testToday }

	workflow := NewWorkflow(resolver, intRepo, b, logger.Nop())
	workflow.now = func() time.Time { return testToday }

	return schRepo, intRepo, resolver, workflow, b
}

func addSchedule(repo *fakeScheduleRepo, id, medID string, dose int64, rule recurrence.Rule, start time.Time, end *time.Time, at recurrence.TimeOfDay) {
	repo.byID[id] = schedules.Schedule{
		ID:                id,
		MedicationID:      medID,
		Dose:              decimal.NewFromInt(dose),
		StartingAt:        recurrence.Midnight(start),
		EndingAtInclusive: end,
		Recurrence:        rule,
		Time:              at,
	}
}

func daily(units int) recurrence.Rule {
	return recurrence.Rule{Type: recurrence.TypeDaily, Units: units}
}

// -------------------------
// FindByDate
// -------------------------

func TestFindByDate_OnlyActiveSchedules_OrderedByTime(t *testing.T) {
	schRepo, _, resolver, _, _ := newFixture()

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	addSchedule(schRepo, "s-evening", "m1", 1, daily(1), start, nil, recurrence.TimeOfDay{Hour: 21})
	addSchedule(schRepo, "s-morning", "m2", 1, daily(1), start, nil, recurrence.TimeOfDay{Hour: 8})
	// Cada 2 días desde el 1: el 10 no toca (offset 9).
	addSchedule(schRepo, "s-inactive", "m3", 1, daily(2), start, nil, recurrence.TimeOfDay{Hour: 12})

	got, err := resolver.FindByDate(context.Background(), time.Date(2024, 4, 10, 15, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FindByDate: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 intakes, got %d", len(got))
	}
	if got[0].Schedule.ID != "s-morning" || got[1].Schedule.ID != "s-evening" {
		t.Fatalf("wrong order: %s, %s", got[0].Schedule.ID, got[1].Schedule.ID)
	}

	want := time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC)
	if !got[0].ScheduledDate.Equal(want) {
		t.Fatalf("scheduledDate = %s, want %s", got[0].ScheduledDate, want)
	}
	if got[0].Completed != nil {
		t.Fatal("no completion recorded, Completed must be nil")
	}
}

func TestFindByDate_AttachesCompletionOnExactTimestamp(t *testing.T) {
	schRepo, intRepo, resolver, _, _ := newFixture()

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	addSchedule(schRepo, "s1", "m1", 1, daily(1), start, nil, recurrence.TimeOfDay{Hour: 8})

	occurrence := time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC)
	intRepo.records = append(intRepo.records,
		CompletedIntake{ID: "c-other", ScheduleID: "s1", ScheduledDate: occurrence.Add(-24 * time.Hour)},
		CompletedIntake{ID: "c-match", ScheduleID: "s1", ScheduledDate: occurrence},
	)

	got, err := resolver.FindByDate(context.Background(), occurrence)
	if err != nil {
		t.Fatalf("FindByDate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 intake, got %d", len(got))
	}
	if got[0].Completed == nil || got[0].Completed.ID != "c-match" {
		t.Fatalf("expected completion c-match attached, got %+v", got[0].Completed)
	}
}

func TestFindByDate_ReadIsIdempotent(t *testing.T) {
	schRepo, _, resolver, _, _ := newFixture()
	addSchedule(schRepo, "s1", "m1", 2, daily(1),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), nil, recurrence.TimeOfDay{Hour: 8})

	d := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	first, err := resolver.FindByDate(context.Background(), d)
	if err != nil {
		t.Fatalf("FindByDate: %v", err)
	}
	second, err := resolver.FindByDate(context.Background(), d)
	if err != nil {
		t.Fatalf("FindByDate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two reads without writes in between must return equal results")
	}
}

// -------------------------
// FindTotalDosesUntil
// -------------------------

func TestFindTotalDosesUntil_DailyFromTodayYieldsSevenDoses(t *testing.T) {
	schRepo, _, resolver, _, _ := newFixture()

	today := recurrence.Midnight(testToday)
	addSchedule(schRepo, "s1", "m1", 1, daily(1), today, nil, recurrence.TimeOfDay{Hour: 8})

	got, err := resolver.FindTotalDosesUntil(context.Background(), today.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("FindTotalDosesUntil: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if !got[0].TotalDose.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("totalDose = %s, want 7", got[0].TotalDose)
	}
}

func TestFindTotalDosesUntil_ExcludesDosesAlreadyDueBeforeToday(t *testing.T) {
	schRepo, _, resolver, _, _ := newFixture()

	// Empezó hace 10 días; solo cuentan las dosis entre hoy y el objetivo.
	start := recurrence.Midnight(testToday).AddDate(0, 0, -10)
	addSchedule(schRepo, "s1", "m1", 2, daily(1), start, nil, recurrence.TimeOfDay{Hour: 8})

	got, err := resolver.FindTotalDosesUntil(context.Background(), recurrence.Midnight(testToday).AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("FindTotalDosesUntil: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	// days=15, passed=10, (15-10) ocurrencias * dosis 2.
	if !got[0].TotalDose.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("totalDose = %s, want 10", got[0].TotalDose)
	}
}

func TestFindTotalDosesUntil_ClampsToScheduleEnd(t *testing.T) {
	schRepo, _, resolver, _, _ := newFixture()

	today := recurrence.Midnight(testToday)
	end := today.AddDate(0, 0, 3)
	addSchedule(schRepo, "s1", "m1", 1, daily(1), today, &end, recurrence.TimeOfDay{Hour: 8})

	got, err := resolver.FindTotalDosesUntil(context.Background(), today.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("FindTotalDosesUntil: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if !got[0].TotalDose.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("totalDose = %s, want 3", got[0].TotalDose)
	}
}

func TestFindTotalDosesUntil_DropsNonPositiveSums(t *testing.T) {
	schRepo, _, resolver, _, _ := newFixture()

	// Terminó hace 5 días: no aporta nada a la ventana.
	start := recurrence.Midnight(testToday).AddDate(0, 0, -30)
	end := recurrence.Midnight(testToday).AddDate(0, 0, -5)
	addSchedule(schRepo, "s1", "m1", 1, daily(1), start, &end, recurrence.TimeOfDay{Hour: 8})

	got, err := resolver.FindTotalDosesUntil(context.Background(), recurrence.Midnight(testToday).AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("FindTotalDosesUntil: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %v", got)
	}
}

// -------------------------
// Workflow
// -------------------------

func TestComplete_PersistsRecordAndPublishesEvent(t *testing.T) {
	schRepo, intRepo, _, workflow, b := newFixture()

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	addSchedule(schRepo, "s1", "m1", 2, daily(1), start, nil, recurrence.TimeOfDay{Hour: 8})

	var published []bus.IntakeCompleted
	b.Subscribe(func(_ context.Context, e bus.Event) {
		if ic, ok := e.(bus.IntakeCompleted); ok {
			published = append(published, ic)
		}
	})

	occurrence := time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC)
	c, err := workflow.Complete(context.Background(), CompleteInput{
		ScheduleID:    "s1",
		ScheduledDate: occurrence,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.ID == "" || !c.ScheduledDate.Equal(occurrence) {
		t.Fatalf("bad record: %+v", c)
	}
	if len(intRepo.records) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(intRepo.records))
	}
	if len(published) != 1 || published[0].MedicationID != "m1" || !published[0].Dose.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("bad event: %+v", published)
	}
}

func TestComplete_NoDuplicateGuard(t *testing.T) {
	schRepo, intRepo, _, workflow, b := newFixture()

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	addSchedule(schRepo, "s1", "m1", 1, daily(1), start, nil, recurrence.TimeOfDay{Hour: 8})

	events := 0
	b.Subscribe(func(_ context.Context, e bus.Event) {
		if _, ok := e.(bus.IntakeCompleted); ok {
			events++
		}
	})

	occurrence := time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC)
	in := CompleteInput{ScheduleID: "s1", ScheduledDate: occurrence}

	// Comportamiento heredado y documentado: completar dos veces la misma
	// ocurrencia crea dos registros y publica dos descuentos de stock.
	if _, err := workflow.Complete(context.Background(), in); err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	if _, err := workflow.Complete(context.Background(), in); err != nil {
		t.Fatalf("second Complete: %v", err)
	}

	if len(intRepo.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(intRepo.records))
	}
	if events != 2 {
		t.Fatalf("expected 2 IntakeCompleted events, got %d", events)
	}
}

func TestComplete_UnknownScheduleFails(t *testing.T) {
	_, _, _, workflow, _ := newFixture()

	_, err := workflow.Complete(context.Background(), CompleteInput{
		ScheduleID:    "ghost",
		ScheduledDate: time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatal("expected error for unknown schedule")
	}
}
