package postgres

import (
	"context"
	"database/sql"
	"time"

	"med-cabinet/internal/domain/intakes"
)

type IntakesRepo struct {
	db *sql.DB
}

func NewIntakesRepo(db *sql.DB) *IntakesRepo {
	return &IntakesRepo{db: db}
}

func (r *IntakesRepo) Create(ctx context.Context, c intakes.CompletedIntake) error {
	// No hay unique sobre (schedule_id, scheduled_date): completar dos veces
	// la misma ocurrencia inserta dos registros.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completed_intakes (
			id, schedule_id, scheduled_date, completed_date
		) VALUES ($1,$2,$3,$4)
	`,
		c.ID,
		c.ScheduleID,
		c.ScheduledDate,
		c.CompletedDate,
	)
	return err
}

func (r *IntakesRepo) GetByScheduleAndDate(ctx context.Context, scheduleID string, scheduledDate time.Time) (intakes.CompletedIntake, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, schedule_id, scheduled_date, completed_date
		FROM completed_intakes
		WHERE schedule_id = $1 AND scheduled_date = $2
		LIMIT 1
	`, scheduleID, scheduledDate)

	var c intakes.CompletedIntake
	if err := row.Scan(&c.ID, &c.ScheduleID, &c.ScheduledDate, &c.CompletedDate); err != nil {
		if err == sql.ErrNoRows {
			return intakes.CompletedIntake{}, intakes.ErrNotFound
		}
		return intakes.CompletedIntake{}, err
	}
	return c, nil
}

func (r *IntakesRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]intakes.CompletedIntake, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, schedule_id, scheduled_date, completed_date
		FROM completed_intakes
		WHERE schedule_id = $1
		ORDER BY scheduled_date ASC
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]intakes.CompletedIntake, 0)
	for rows.Next() {
		var c intakes.CompletedIntake
		if err := rows.Scan(&c.ID, &c.ScheduleID, &c.ScheduledDate, &c.CompletedDate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *IntakesRepo) DeleteBySchedules(ctx context.Context, scheduleIDs []string) error {
	if len(scheduleIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM completed_intakes
		WHERE schedule_id = ANY($1)
	`, scheduleIDs)
	return err
}
