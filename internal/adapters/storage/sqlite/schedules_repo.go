package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/recurrence"
	"med-cabinet/internal/domain/schedules"
)

type SchedulesRepo struct {
	db *sqlx.DB
}

func NewSchedulesRepo(db *sqlx.DB) *SchedulesRepo {
	return &SchedulesRepo{db: db}
}

type scheduleRow struct {
	ID                string          `db:"id"`
	MedicationID      string          `db:"medication_id"`
	Dose              decimal.Decimal `db:"dose"`
	StartingAt        time.Time       `db:"starting_at"`
	EndingAtInclusive sql.NullTime    `db:"ending_at_inclusive"`
	RecurrenceType    string          `db:"recurrence_type"`
	RecurrenceUnits   int             `db:"recurrence_units"`
	TimeHour          int             `db:"time_hour"`
	TimeMinute        int             `db:"time_minute"`
	Description       string          `db:"description"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r scheduleRow) toDomain() schedules.Schedule {
	s := schedules.Schedule{
		ID:           r.ID,
		MedicationID: r.MedicationID,
		Dose:         r.Dose,
		StartingAt:   r.StartingAt,
		Recurrence: recurrence.Rule{
			Type:  recurrence.Type(r.RecurrenceType),
			Units: r.RecurrenceUnits,
		},
		Time:        recurrence.TimeOfDay{Hour: r.TimeHour, Minute: r.TimeMinute},
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.EndingAtInclusive.Valid {
		t := r.EndingAtInclusive.Time
		s.EndingAtInclusive = &t
	}
	return s
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

const scheduleCols = `
	id, medication_id, dose,
	starting_at, ending_at_inclusive,
	recurrence_type, recurrence_units,
	time_hour, time_minute,
	description, created_at, updated_at
`

func (r *SchedulesRepo) Create(ctx context.Context, s schedules.Schedule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (`+scheduleCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID,
		s.MedicationID,
		s.Dose,
		s.StartingAt,
		toNullTime(s.EndingAtInclusive),
		string(s.Recurrence.Type),
		s.Recurrence.Units,
		s.Time.Hour,
		s.Time.Minute,
		s.Description,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *SchedulesRepo) Update(ctx context.Context, s schedules.Schedule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE schedules
		SET medication_id = ?, dose = ?, starting_at = ?, ending_at_inclusive = ?,
			recurrence_type = ?, recurrence_units = ?, time_hour = ?, time_minute = ?,
			description = ?, updated_at = ?
		WHERE id = ?
	`,
		s.MedicationID,
		s.Dose,
		s.StartingAt,
		toNullTime(s.EndingAtInclusive),
		string(s.Recurrence.Type),
		s.Recurrence.Units,
		s.Time.Hour,
		s.Time.Minute,
		s.Description,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return schedules.ErrNotFound
	}
	return nil
}

func (r *SchedulesRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	var row scheduleRow
	err := r.db.GetContext(ctx, &row, `SELECT `+scheduleCols+` FROM schedules WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return schedules.Schedule{}, schedules.ErrNotFound
		}
		return schedules.Schedule{}, err
	}
	return row.toDomain(), nil
}

func (r *SchedulesRepo) List(ctx context.Context) ([]schedules.Schedule, error) {
	return r.list(ctx, `SELECT `+scheduleCols+` FROM schedules ORDER BY created_at ASC`)
}

func (r *SchedulesRepo) ListByMedication(ctx context.Context, medicationID string) ([]schedules.Schedule, error) {
	return r.list(ctx, `SELECT `+scheduleCols+` FROM schedules WHERE medication_id = ? ORDER BY created_at ASC`, medicationID)
}

func (r *SchedulesRepo) list(ctx context.Context, query string, args ...any) ([]schedules.Schedule, error) {
	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]schedules.Schedule, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SchedulesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return schedules.ErrNotFound
	}
	return nil
}

func (r *SchedulesRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE medication_id = ?`, medicationID)
	return err
}
