package sqlite

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Open abre (o crea) el fichero sqlite y bootstrapea el esquema.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS medication_types (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		unit       TEXT NOT NULL,
		individual INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS medications (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		medication_type_id TEXT NOT NULL,
		created_at         TIMESTAMP NOT NULL,
		updated_at         TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedules (
		id                  TEXT PRIMARY KEY,
		medication_id       TEXT NOT NULL,
		dose                TEXT NOT NULL,
		starting_at         TIMESTAMP NOT NULL,
		ending_at_inclusive TIMESTAMP,
		recurrence_type     TEXT NOT NULL,
		recurrence_units    INTEGER NOT NULL,
		time_hour           INTEGER NOT NULL,
		time_minute         INTEGER NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMP NOT NULL,
		updated_at          TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_medication ON schedules(medication_id);

	CREATE TABLE IF NOT EXISTS cabinet_entries (
		id            TEXT PRIMARY KEY,
		medication_id TEXT NOT NULL,
		units         TEXT NOT NULL,
		initial_units TEXT NOT NULL,
		expiry_date   TIMESTAMP NOT NULL,
		created_at    TIMESTAMP NOT NULL,
		updated_at    TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cabinet_medication ON cabinet_entries(medication_id);

	CREATE TABLE IF NOT EXISTS completed_intakes (
		id             TEXT PRIMARY KEY,
		schedule_id    TEXT NOT NULL,
		scheduled_date TIMESTAMP NOT NULL,
		completed_date TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_intakes_schedule ON completed_intakes(schedule_id);
	`
	_, err := db.Exec(ddl)
	return err
}
