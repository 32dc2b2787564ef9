package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"med-cabinet/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sqlx.DB
}

func NewMedicationsRepo(db *sqlx.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

type medicationRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	MedicationTypeID string    `db:"medication_type_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r medicationRow) toDomain() medications.Medication {
	return medications.Medication{
		ID:               r.ID,
		Name:             r.Name,
		MedicationTypeID: r.MedicationTypeID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type medicationTypeRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Unit       string `db:"unit"`
	Individual bool   `db:"individual"`
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (id, name, medication_type_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.MedicationTypeID, m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET name = ?, medication_type_id = ?, updated_at = ?
		WHERE id = ?
	`, m.Name, m.MedicationTypeID, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	var row medicationRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, medication_type_id, created_at, updated_at
		FROM medications WHERE id = ?
	`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return row.toDomain(), nil
}

func (r *MedicationsRepo) List(ctx context.Context) ([]medications.Medication, error) {
	var rows []medicationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, medication_type_id, created_at, updated_at
		FROM medications ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	out := make([]medications.Medication, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) ListTypes(ctx context.Context) ([]medications.MedicationType, error) {
	var rows []medicationTypeRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, unit, individual
		FROM medication_types ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	out := make([]medications.MedicationType, 0, len(rows))
	for _, row := range rows {
		out = append(out, medications.MedicationType(row))
	}
	return out, nil
}

func (r *MedicationsRepo) GetTypeByID(ctx context.Context, id string) (medications.MedicationType, error) {
	var row medicationTypeRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, unit, individual
		FROM medication_types WHERE id = ?
	`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return medications.MedicationType{}, medications.ErrNotFound
		}
		return medications.MedicationType{}, err
	}
	return medications.MedicationType(row), nil
}

func (r *MedicationsRepo) SeedTypes(ctx context.Context, types []medications.MedicationType) error {
	for _, t := range types {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO medication_types (id, name, unit, individual)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, t.ID, t.Name, t.Unit, t.Individual)
		if err != nil {
			return err
		}
	}
	return nil
}
