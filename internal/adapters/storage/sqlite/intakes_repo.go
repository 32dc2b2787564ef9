package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"med-cabinet/internal/domain/intakes"
)

type IntakesRepo struct {
	db *sqlx.DB
}

func NewIntakesRepo(db *sqlx.DB) *IntakesRepo {
	return &IntakesRepo{db: db}
}

type completedIntakeRow struct {
	ID            string    `db:"id"`
	ScheduleID    string    `db:"schedule_id"`
	ScheduledDate time.Time `db:"scheduled_date"`
	CompletedDate time.Time `db:"completed_date"`
}

func (r *IntakesRepo) Create(ctx context.Context, c intakes.CompletedIntake) error {
	// Sin unique sobre (schedule_id, scheduled_date): completar dos veces la
	// misma ocurrencia inserta dos registros.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completed_intakes (id, schedule_id, scheduled_date, completed_date)
		VALUES (?, ?, ?, ?)
	`, c.ID, c.ScheduleID, c.ScheduledDate, c.CompletedDate)
	return err
}

func (r *IntakesRepo) GetByScheduleAndDate(ctx context.Context, scheduleID string, scheduledDate time.Time) (intakes.CompletedIntake, error) {
	var row completedIntakeRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, schedule_id, scheduled_date, completed_date
		FROM completed_intakes
		WHERE schedule_id = ? AND scheduled_date = ?
		LIMIT 1
	`, scheduleID, scheduledDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return intakes.CompletedIntake{}, intakes.ErrNotFound
		}
		return intakes.CompletedIntake{}, err
	}
	return intakes.CompletedIntake(row), nil
}

func (r *IntakesRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]intakes.CompletedIntake, error) {
	var rows []completedIntakeRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, schedule_id, scheduled_date, completed_date
		FROM completed_intakes
		WHERE schedule_id = ?
		ORDER BY scheduled_date ASC
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	out := make([]intakes.CompletedIntake, 0, len(rows))
	for _, row := range rows {
		out = append(out, intakes.CompletedIntake(row))
	}
	return out, nil
}

func (r *IntakesRepo) DeleteBySchedules(ctx context.Context, scheduleIDs []string) error {
	if len(scheduleIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM completed_intakes WHERE schedule_id IN (?)`, scheduleIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
