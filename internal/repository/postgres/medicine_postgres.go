package postgres

import (
	"context"
	"database/sql"

	"medstock/internal/model"
	"medstock/internal/repository"
)

// MedicinePostgres is a PostgreSQL implementation of repository.MedicineRepository.
type MedicinePostgres struct {
	db *sql.DB
}

// NewMedicinePostgres creates a new MedicinePostgres repository.
func NewMedicinePostgres(db *sql.DB) *MedicinePostgres {
	return &MedicinePostgres{db: db}
}

var _ repository.MedicineRepository = (*MedicinePostgres)(nil)

const medicineSelectSQL = `
		SELECT m.id, m.name, m.unit, m.dosage_form, m.description, m.created_at, m.updated_at,
		       COALESCE(SUM(` + signedQuantitySQL + `), 0) AS current_stock
		FROM medicines m
		LEFT JOIN stock_transactions t ON t.medicine_id = m.id AND t.txn_date >= ` + openFromSQL + `
		LEFT JOIN transaction_types tt ON tt.id = t.txn_type_id
`

func scanMedicine(row interface{ Scan(dest ...any) error }) (*model.Medicine, error) {
	var m model.Medicine
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Unit,
		&m.DosageForm,
		&m.Description,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.CurrentStock,
	); err != nil {
		return nil, err
	}
	m.LowStock = m.CurrentStock < model.LowStockThreshold
	return &m, nil
}

// Create inserts a new medicine. A case-insensitive duplicate name yields repository.ErrConflict.
func (r *MedicinePostgres) Create(ctx context.Context, m *model.Medicine) (*model.Medicine, error) {
	const q = `
		INSERT INTO medicines (id, name, unit, dosage_form, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, unit, dosage_form, description, created_at, updated_at, 0
	`
	row := r.db.QueryRowContext(ctx, q,
		m.ID,
		m.Name,
		m.Unit,
		m.DosageForm,
		m.Description,
		m.CreatedAt,
		m.UpdatedAt,
	)
	out, err := scanMedicine(row)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// FindByID fetches a single medicine with its current stock.
func (r *MedicinePostgres) FindByID(ctx context.Context, id string) (*model.Medicine, error) {
	q := medicineSelectSQL + `
		WHERE m.id = $1
		GROUP BY m.id
	`
	m, err := scanMedicine(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// List returns the whole catalog ordered by name.
func (r *MedicinePostgres) List(ctx context.Context) ([]model.Medicine, error) {
	q := medicineSelectSQL + `
		GROUP BY m.id
		ORDER BY m.name ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Medicine, 0)
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the editable fields of m and returns the stored row.
func (r *MedicinePostgres) Update(ctx context.Context, m *model.Medicine) (*model.Medicine, error) {
	const q = `
		UPDATE medicines
		SET name = $2, unit = $3, dosage_form = $4, description = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, m.ID, m.Name, m.Unit, m.DosageForm, m.Description, m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, m.ID)
}

// Delete removes a medicine that has no ledger entries.
func (r *MedicinePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM medicines WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return translate(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
