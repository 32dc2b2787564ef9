package intakes

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/recurrence"
	"med-cabinet/internal/domain/schedules"
	"med-cabinet/internal/platform/logger"
)

// Resolver calcula las ocurrencias de toma de una fecha y los totales de
// dosis de una ventana de proyección. Solo lee; repetir una consulta sin
// escrituras intermedias devuelve lo mismo.
type Resolver struct {
	catalog *schedules.Service
	repo    Repository
	log     logger.Logger
	now     func() time.Time
}

func NewResolver(catalog *schedules.Service, repo Repository, log logger.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		repo:    repo,
		log:     log,
		now:     time.Now,
	}
}

// FindByDate resuelve las ocurrencias del día: filtra los horarios activos
// en la fecha, calcula el timestamp de cada ocurrencia y le adjunta el
// registro de toma si existe uno con ese timestamp exacto. El resultado va
// ordenado por scheduledDate ascendente.
func (r *Resolver) FindByDate(ctx context.Context, date time.Time) ([]Intake, error) {
	day := recurrence.Midnight(date)

	entries, err := r.catalog.FindAll(ctx, schedules.SortByMedication, false)
	if err != nil {
		return nil, err
	}

	out := make([]Intake, 0, len(entries))
	for _, e := range entries {
		active, err := recurrence.IsActiveOn(e.Recurrence, e.StartingAt, e.EndingAtInclusive, day)
		if err != nil {
			return nil, err
		}
		if !active {
			continue
		}

		scheduledAt := recurrence.OccurrenceTime(day, e.Time)

		intake := Intake{Schedule: e, ScheduledDate: scheduledAt}
		c, err := r.repo.GetByScheduleAndDate(ctx, e.ID, scheduledAt)
		switch {
		case err == nil:
			intake.Completed = &c
		case errors.Is(err, ErrNotFound):
			// sin registro: la ocurrencia queda pendiente
		default:
			return nil, err
		}

		out = append(out, intake)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledDate.Before(out[j].ScheduledDate)
	})
	return out, nil
}

// FindTotalDosesUntil acumula, por medicamento, la dosis que cae
// estrictamente entre hoy (a medianoche) y targetDate, recortada al periodo
// propio de cada horario. Las dosis que ya vencieron antes de hoy se
// descuentan del total con la misma rejilla de floor, así los periodos
// parciales no regalan ni roban ocurrencias.
func (r *Resolver) FindTotalDosesUntil(ctx context.Context, targetDate time.Time) ([]MedicationDose, error) {
	items, err := r.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	today := recurrence.Midnight(r.now())
	target := recurrence.Midnight(targetDate)

	totals := make(map[string]decimal.Decimal)
	for _, sch := range items {
		contribution, err := scheduleDoseInWindow(sch, today, target)
		if err != nil {
			return nil, err
		}
		totals[sch.MedicationID] = totals[sch.MedicationID].Add(contribution)
	}

	out := make([]MedicationDose, 0, len(totals))
	for medID, total := range totals {
		if !total.IsPositive() {
			continue
		}
		out = append(out, MedicationDose{MedicationID: medID, TotalDose: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MedicationID < out[j].MedicationID })
	return out, nil
}

func scheduleDoseInWindow(sch schedules.Schedule, today, target time.Time) (decimal.Decimal, error) {
	startDate := sch.StartingAt
	if startDate.Before(today) {
		startDate = today
	}

	endDate := target
	if sch.EndingAtInclusive != nil && endDate.After(*sch.EndingAtInclusive) {
		endDate = *sch.EndingAtInclusive
	}

	days := recurrence.DaysBetween(sch.StartingAt, endDate)
	if days <= 0 {
		return decimal.Zero, nil
	}

	expectedDays, err := sch.Recurrence.DaysPerOccurrence()
	if err != nil {
		return decimal.Zero, err
	}

	totalDose := decimal.NewFromInt(int64(days / expectedDays)).Mul(sch.Dose)

	alreadyPassedDays := recurrence.DaysBetween(sch.StartingAt, startDate)
	alreadyPassedDose := decimal.NewFromInt(int64(alreadyPassedDays / expectedDays)).Mul(sch.Dose)

	return totalDose.Sub(alreadyPassedDose), nil
}
