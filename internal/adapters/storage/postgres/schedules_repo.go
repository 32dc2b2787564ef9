package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"med-cabinet/internal/domain/recurrence"
	"med-cabinet/internal/domain/schedules"
)

type SchedulesRepo struct {
	db *sql.DB
}

func NewSchedulesRepo(db *sql.DB) *SchedulesRepo {
	return &SchedulesRepo{db: db}
}

func (r *SchedulesRepo) Create(ctx context.Context, s schedules.Schedule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (
			id, medication_id, dose,
			starting_at, ending_at_inclusive,
			recurrence_type, recurrence_units,
			time_hour, time_minute,
			description,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
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
		SET
			medication_id = $2,
			dose = $3,
			starting_at = $4,
			ending_at_inclusive = $5,
			recurrence_type = $6,
			recurrence_units = $7,
			time_hour = $8,
			time_minute = $9,
			description = $10,
			updated_at = $11
		WHERE id = $1
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
		s.UpdatedAt,
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

const scheduleCols = `
	id, medication_id, dose,
	starting_at, ending_at_inclusive,
	recurrence_type, recurrence_units,
	time_hour, time_minute,
	description,
	created_at, updated_at
`

func scanSchedule(row interface{ Scan(...any) error }) (schedules.Schedule, error) {
	var s schedules.Schedule
	var ending sql.NullTime
	var rtype string
	if err := row.Scan(
		&s.ID,
		&s.MedicationID,
		&s.Dose,
		&s.StartingAt,
		&ending,
		&rtype,
		&s.Recurrence.Units,
		&s.Time.Hour,
		&s.Time.Minute,
		&s.Description,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return schedules.Schedule{}, err
	}
	s.Recurrence.Type = recurrence.Type(rtype)
	if ending.Valid {
		t := ending.Time
		s.EndingAtInclusive = &t
	}
	return s, nil
}

func (r *SchedulesRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return schedules.Schedule{}, schedules.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+scheduleCols+` FROM schedules WHERE id = $1`, id)
	s, err := scanSchedule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return schedules.Schedule{}, schedules.ErrNotFound
		}
		return schedules.Schedule{}, err
	}
	return s, nil
}

func (r *SchedulesRepo) List(ctx context.Context) ([]schedules.Schedule, error) {
	return r.list(ctx, `SELECT `+scheduleCols+` FROM schedules ORDER BY created_at ASC`)
}

func (r *SchedulesRepo) ListByMedication(ctx context.Context, medicationID string) ([]schedules.Schedule, error) {
	return r.list(ctx, `SELECT `+scheduleCols+` FROM schedules WHERE medication_id = $1 ORDER BY created_at ASC`, medicationID)
}

func (r *SchedulesRepo) list(ctx context.Context, query string, args ...any) ([]schedules.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]schedules.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SchedulesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
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
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE medication_id = $1`, medicationID)
	return err
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
