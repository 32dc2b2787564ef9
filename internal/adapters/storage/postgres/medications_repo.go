package postgres

import (
	"context"
	"database/sql"
	"strings"

	"med-cabinet/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, name, medication_type_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		m.ID,
		m.Name,
		m.MedicationTypeID,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			name = $2,
			medication_type_id = $3,
			updated_at = $4
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.MedicationTypeID,
		m.UpdatedAt,
	)
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
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, medication_type_id, created_at, updated_at
		FROM medications
		WHERE id = $1
	`, id)

	var m medications.Medication
	if err := row.Scan(&m.ID, &m.Name, &m.MedicationTypeID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) List(ctx context.Context) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, medication_type_id, created_at, updated_at
		FROM medications
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		var m medications.Medication
		if err := rows.Scan(&m.ID, &m.Name, &m.MedicationTypeID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
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
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, unit, individual
		FROM medication_types
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.MedicationType, 0)
	for rows.Next() {
		var t medications.MedicationType
		if err := rows.Scan(&t.ID, &t.Name, &t.Unit, &t.Individual); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) GetTypeByID(ctx context.Context, id string) (medications.MedicationType, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, unit, individual
		FROM medication_types
		WHERE id = $1
	`, id)

	var t medications.MedicationType
	if err := row.Scan(&t.ID, &t.Name, &t.Unit, &t.Individual); err != nil {
		if err == sql.ErrNoRows {
			return medications.MedicationType{}, medications.ErrNotFound
		}
		return medications.MedicationType{}, err
	}
	return t, nil
}

func (r *MedicationsRepo) SeedTypes(ctx context.Context, types []medications.MedicationType) error {
	for _, t := range types {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO medication_types (id, name, unit, individual)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (id) DO NOTHING
		`, t.ID, t.Name, t.Unit, t.Individual)
		if err != nil {
			return err
		}
	}
	return nil
}
