package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"med-cabinet/internal/domain/cabinet"
)

type CabinetRepo struct {
	db *sqlx.DB
}

func NewCabinetRepo(db *sqlx.DB) *CabinetRepo {
	return &CabinetRepo{db: db}
}

type cabinetRow struct {
	ID           string          `db:"id"`
	MedicationID string          `db:"medication_id"`
	Units        decimal.Decimal `db:"units"`
	InitialUnits decimal.Decimal `db:"initial_units"`
	ExpiryDate   time.Time       `db:"expiry_date"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r cabinetRow) toDomain() cabinet.Entry {
	return cabinet.Entry{
		ID:           r.ID,
		MedicationID: r.MedicationID,
		Units:        r.Units,
		InitialUnits: r.InitialUnits,
		ExpiryDate:   r.ExpiryDate,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *CabinetRepo) Create(ctx context.Context, e cabinet.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cabinet_entries (id, medication_id, units, initial_units, expiry_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.MedicationID, e.Units, e.InitialUnits, e.ExpiryDate, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *CabinetRepo) Update(ctx context.Context, e cabinet.Entry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cabinet_entries
		SET medication_id = ?, units = ?, initial_units = ?, expiry_date = ?, updated_at = ?
		WHERE id = ?
	`, e.MedicationID, e.Units, e.InitialUnits, e.ExpiryDate, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cabinet.ErrNotFound
	}
	return nil
}

// UpdateBatch aplica todo o nada dentro de una transacción.
func (r *CabinetRepo) UpdateBatch(ctx context.Context, entries []cabinet.Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		res, err := tx.ExecContext(ctx, `
			UPDATE cabinet_entries SET units = ?, updated_at = ? WHERE id = ?
		`, e.Units, e.UpdatedAt, e.ID)
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
	var row cabinetRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, medication_id, units, initial_units, expiry_date, created_at, updated_at
		FROM cabinet_entries WHERE id = ?
	`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return cabinet.Entry{}, cabinet.ErrNotFound
		}
		return cabinet.Entry{}, err
	}
	return row.toDomain(), nil
}

func (r *CabinetRepo) List(ctx context.Context) ([]cabinet.Entry, error) {
	return r.list(ctx, `
		SELECT id, medication_id, units, initial_units, expiry_date, created_at, updated_at
		FROM cabinet_entries ORDER BY created_at ASC
	`)
}

func (r *CabinetRepo) ListByMedication(ctx context.Context, medicationID string) ([]cabinet.Entry, error) {
	return r.list(ctx, `
		SELECT id, medication_id, units, initial_units, expiry_date, created_at, updated_at
		FROM cabinet_entries WHERE medication_id = ? ORDER BY created_at ASC
	`, medicationID)
}

func (r *CabinetRepo) list(ctx context.Context, query string, args ...any) ([]cabinet.Entry, error) {
	var rows []cabinetRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]cabinet.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CabinetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cabinet_entries WHERE id = ?`, id)
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
	_, err := r.db.ExecContext(ctx, `DELETE FROM cabinet_entries WHERE medication_id = ?`, medicationID)
	return err
}
