package schedules

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/medications"
	"med-cabinet/internal/domain/recurrence"
	"med-cabinet/internal/platform/bus"
	"med-cabinet/internal/platform/logger"
)

// -------------------------
// Test repo (slice-backed para que el orden subyacente sea estable)
// -------------------------

type testRepo struct {
	items []Schedule
}

func (r *testRepo) Create(ctx context.Context, s Schedule) error {
	r.items = append(r.items, s)
	return nil
}

func (r *testRepo) Update(ctx context.Context, s Schedule) error {
	for i, it := range r.items {
		if it.ID == s.ID {
			r.items[i] = s
			return nil
		}
	}
	return ErrNotFound
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Schedule, error) {
	for _, it := range r.items {
		if it.ID == id {
			return it, nil
		}
	}
	return Schedule{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context) ([]Schedule, error) {
	out := make([]Schedule, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *testRepo) ListByMedication(ctx context.Context, medicationID string) ([]Schedule, error) {
	out := make([]Schedule, 0)
	for _, it := range r.items {
		if it.MedicationID == medicationID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *testRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	kept := r.items[:0]
	for _, it := range r.items {
		if it.MedicationID != medicationID {
			kept = append(kept, it)
		}
	}
	r.items = kept
	return nil
}

type fakeMeds map[string]medications.Medication

func (f fakeMeds) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	m, ok := f[id]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, nil
}

func newTestService(meds fakeMeds) (*Service, *testRepo, *bus.Bus) {
	repo := &testRepo{}
	b := bus.New()
	svc := NewService(repo, meds, b, logger.Nop())
	return svc, repo, b
}

func dailyInput(medID string, start time.Time) CreateInput {
	return CreateInput{
		MedicationID: medID,
		Dose:         decimal.NewFromInt(1),
		StartingAt:   start,
		Recurrence:   recurrence.Rule{Type: recurrence.TypeDaily, Units: 1},
		Time:         recurrence.TimeOfDay{Hour: 9, Minute: 0},
	}
}

func TestCreate_Validation(t *testing.T) {
	meds := fakeMeds{"med-1": {ID: "med-1", Name: "Amoxicilina"}}
	svc, _, _ := newTestService(meds)
	ctx := context.Background()
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"unknown medication", func(in *CreateInput) { in.MedicationID = "nope" }},
		{"zero dose", func(in *CreateInput) { in.Dose = decimal.Zero }},
		{"negative dose", func(in *CreateInput) { in.Dose = decimal.NewFromInt(-1) }},
		{"bad recurrence type", func(in *CreateInput) { in.Recurrence.Type = "monthly" }},
		{"zero recurrence units", func(in *CreateInput) { in.Recurrence.Units = 0 }},
		{"zero startingAt", func(in *CreateInput) { in.StartingAt = time.Time{} }},
		{"ending before starting", func(in *CreateInput) {
			e := start.AddDate(0, 0, -1)
			in.EndingAtInclusive = &e
		}},
		{"description too long", func(in *CreateInput) {
			in.Description = strings.Repeat("x", 257)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := dailyInput("med-1", start)
			tc.mutate(&in)
			if _, err := svc.Create(ctx, in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreate_NormalizesDatesToMidnight(t *testing.T) {
	meds := fakeMeds{"med-1": {ID: "med-1", Name: "Amoxicilina"}}
	svc, _, _ := newTestService(meds)

	start := time.Date(2024, 4, 1, 14, 30, 12, 0, time.UTC)
	end := time.Date(2024, 4, 10, 8, 15, 0, 0, time.UTC)
	in := dailyInput("med-1", start)
	in.EndingAtInclusive = &end

	sch, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	wantStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if !sch.StartingAt.Equal(wantStart) {
		t.Fatalf("startingAt = %v, want %v", sch.StartingAt, wantStart)
	}
	wantEnd := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	if sch.EndingAtInclusive == nil || !sch.EndingAtInclusive.Equal(wantEnd) {
		t.Fatalf("endingAtInclusive = %v, want %v", sch.EndingAtInclusive, wantEnd)
	}
}

func TestFindAll_Sorting(t *testing.T) {
	meds := fakeMeds{
		"med-a": {ID: "med-a", Name: "zinc"},
		"med-b": {ID: "med-b", Name: "Amoxicilina"},
		"med-c": {ID: "med-c", Name: "ibuprofeno"},
	}
	svc, _, _ := newTestService(meds)
	ctx := context.Background()

	mustCreate := func(medID string, start time.Time, at recurrence.TimeOfDay) Schedule {
		in := dailyInput(medID, start)
		in.Time = at
		sch, err := svc.Create(ctx, in)
		if err != nil {
			t.Fatalf("create for %s: %v", medID, err)
		}
		return sch
	}

	d1 := time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	sa := mustCreate("med-a", d1, recurrence.TimeOfDay{Hour: 9, Minute: 30})
	sb := mustCreate("med-b", d2, recurrence.TimeOfDay{Hour: 21, Minute: 0})
	sc := mustCreate("med-c", d3, recurrence.TimeOfDay{Hour: 9, Minute: 0})

	assertOrder := func(t *testing.T, got []Entry, want ...string) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("got %d entries, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Fatalf("position %d = %s, want %s", i, got[i].ID, want[i])
			}
		}
	}

	// Default: por nombre de medicamento, case-insensitive
	got, err := svc.FindAll(ctx, "", false)
	if err != nil {
		t.Fatalf("findAll: %v", err)
	}
	assertOrder(t, got, sb.ID, sc.ID, sa.ID)

	// Por fecha de inicio
	got, err = svc.FindAll(ctx, SortByStartDate, false)
	if err != nil {
		t.Fatalf("findAll: %v", err)
	}
	assertOrder(t, got, sb.ID, sc.ID, sa.ID)

	// Por hora del día
	got, err = svc.FindAll(ctx, SortByTime, false)
	if err != nil {
		t.Fatalf("findAll: %v", err)
	}
	assertOrder(t, got, sc.ID, sa.ID, sb.ID)

	// Descendente invierte el comparador
	got, err = svc.FindAll(ctx, SortByTime, true)
	if err != nil {
		t.Fatalf("findAll: %v", err)
	}
	assertOrder(t, got, sb.ID, sa.ID, sc.ID)
}

func TestFindAll_SkipsOrphanSchedules(t *testing.T) {
	meds := fakeMeds{"med-1": {ID: "med-1", Name: "Amoxicilina"}}
	svc, repo, _ := newTestService(meds)
	ctx := context.Background()

	if _, err := svc.Create(ctx, dailyInput("med-1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Huérfano directo en el repo: referencia a un medicamento que ya no existe.
	repo.items = append(repo.items, Schedule{
		ID:           "orphan",
		MedicationID: "gone",
		Dose:         decimal.NewFromInt(1),
		StartingAt:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Recurrence:   recurrence.Rule{Type: recurrence.TypeDaily, Units: 1},
	})

	got, err := svc.FindAll(ctx, "", false)
	if err != nil {
		t.Fatalf("findAll: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected orphan filtered out, got %d entries", len(got))
	}
}

func TestDelete_PublishesScheduleDeleted(t *testing.T) {
	meds := fakeMeds{"med-1": {ID: "med-1", Name: "Amoxicilina"}}
	svc, _, b := newTestService(meds)
	ctx := context.Background()

	var events []bus.Event
	b.Subscribe(func(_ context.Context, e bus.Event) {
		events = append(events, e)
	})

	sch, err := svc.Create(ctx, dailyInput("med-1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, sch.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev, ok := events[0].(bus.ScheduleDeleted)
	if !ok || ev.ScheduleID != sch.ID {
		t.Fatalf("unexpected event %#v", events[0])
	}

	if err := svc.Delete(ctx, sch.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
