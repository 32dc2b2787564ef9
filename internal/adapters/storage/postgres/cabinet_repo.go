package postgres

import (
	"context"
	"database/sql"
	"strings"

	"med-cabinet/internal/domain/cabinet"
)

type CabinetRepo struct {
	db *sql.DB
}

func NewCabinetRepo(db *sql.DB) *CabinetRepo {
	return &CabinetRepo{db: db}
}

func (r *CabinetRepo) Create(ctx context.Context, e cabinet.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cabinet_entries (
			id, medication_id,
			units, initial_units, expiry_date,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		e.ID,
		e.MedicationID,
		e.Units,
		e.InitialUnits,
		e.ExpiryDate,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *CabinetRepo) Update(ctx context.Context, e cabinet.Entry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cabinet_entries
		SET
			medication_id = $2,
			units = $3,
			initial_units = $4,
			expiry_date = $5,
			updated_at = $6
		WHERE id = $1
	`,
		e.ID,
		e.MedicationID,
		e.Units,
		e.InitialUnits,
		e.ExpiryDate,
		e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cabinet.ErrNotFound
	}
	return nil
}

// UpdateBatch aplica todo o nada dentro de una transacción: si algún lote
// no existe, se revierte entero.
func (r *CabinetRepo) UpdateBatch(ctx context.Context, entries []cabinet.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		res, err := tx.ExecContext(ctx, `
			UPDATE cabinet_entries
			SET units = $2, updated_at = $3
			WHERE id = $1
		`, e.ID, e.Units, e.UpdatedAt)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return cabinet.ErrNotFound
		}
	}

	return tx.Commit()
}

func (r *CabinetRepo) GetByID(ctx context.Context, id string) (cabinet.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cabinet.Entry{}, cabinet.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, medication_id, units, initial_units, expiry_date, created_at, updated_at
		FROM cabinet_entries
		WHERE id = $1
	`, id)

	var e cabinet.Entry
	if err := row.Scan(
		&e.ID,
		&e.MedicationID,
		&e.Units,
		&e.InitialUnits,
		&e.ExpiryDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return cabinet.Entry{}, cabinet.ErrNotFound
		}
		return cabinet.Entry{}, err
	}
	return e, nil
}

func (r *CabinetRepo) List(ctx context.Context) ([]cabinet.Entry, error) {
	return r.list(ctx, `
		SELECT id, medication_id, units, initial_units, expiry_date, created_at, updated_at
		FROM cabinet_entries
		ORDER BY created_at ASC
	`)
}

func (r *CabinetRepo) ListByMedication(ctx context.Context, medicationID string) ([]cabinet.Entry, error) {
	return r.list(ctx, `
		SELECT id, medication_id, units, initial_units, expiry_date, created_at, updated_at
		FROM cabinet_entries
		WHERE medication_id = $1
		ORDER BY created_at ASC
	`, medicationID)
}

func (r *CabinetRepo) list(ctx context.Context, query string, args ...any) ([]cabinet.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cabinet.Entry, 0)
	for rows.Next() {
		var e cabinet.Entry
		if err := rows.Scan(
			&e.ID,
			&e.MedicationID,
			&e.Units,
			&e.InitialUnits,
			&e.ExpiryDate,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *CabinetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cabinet_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cabinet.ErrNotFound
	}
	return nil
}

func (r *CabinetRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cabinet_entries WHERE medication_id = $1`, medicationID)
	return err
}
