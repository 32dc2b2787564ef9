package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema crea las tablas si no existen. Suficiente para dev/handoff;
// un despliegue serio lleva migraciones aparte.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS medication_types (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		unit       TEXT NOT NULL,
		individual BOOLEAN NOT NULL
	);

	CREATE TABLE IF NOT EXISTS medications (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		medication_type_id TEXT NOT NULL REFERENCES medication_types(id),
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedules (
		id                  TEXT PRIMARY KEY,
		medication_id       TEXT NOT NULL,
		dose                NUMERIC NOT NULL,
		starting_at         TIMESTAMPTZ NOT NULL,
		ending_at_inclusive TIMESTAMPTZ,
		recurrence_type     TEXT NOT NULL,
		recurrence_units    INTEGER NOT NULL,
		time_hour           INTEGER NOT NULL,
		time_minute         INTEGER NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_medication ON schedules(medication_id);

	CREATE TABLE IF NOT EXISTS cabinet_entries (
		id            TEXT PRIMARY KEY,
		medication_id TEXT NOT NULL,
		units         NUMERIC NOT NULL,
		initial_units NUMERIC NOT NULL,
		expiry_date   TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cabinet_medication ON cabinet_entries(medication_id);

	CREATE TABLE IF NOT EXISTS completed_intakes (
		id             TEXT PRIMARY KEY,
		schedule_id    TEXT NOT NULL,
		scheduled_date TIMESTAMPTZ NOT NULL,
		completed_date TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_intakes_schedule ON completed_intakes(schedule_id);
	`
	_, err := db.ExecContext(ctx, ddl)
	return err
}
