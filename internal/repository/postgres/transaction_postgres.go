package postgres

import (
	"context"
	"database/sql"

	"medstock/internal/model"
	"medstock/internal/repository"
)

// TransactionPostgres is a PostgreSQL implementation of repository.TransactionRepository.
type TransactionPostgres struct {
	db *sql.DB
}

// NewTransactionPostgres creates a new TransactionPostgres repository.
func NewTransactionPostgres(db *sql.DB) *TransactionPostgres {
	return &TransactionPostgres{db: db}
}

var _ repository.TransactionRepository = (*TransactionPostgres)(nil)

const transactionSelectSQL = `
		SELECT t.id, t.medicine_id, t.txn_type_id, t.txn_date, t.quantity, t.remarks, t.created_by, t.created_at,
		       m.name, m.unit, m.dosage_form,
		       tt.code, tt.label, tt.direction
		FROM stock_transactions t
		JOIN medicines m ON m.id = t.medicine_id
		JOIN transaction_types tt ON tt.id = t.txn_type_id
`

func scanTransaction(row interface{ Scan(dest ...any) error }) (*model.StockTransaction, error) {
	var (
		t   model.StockTransaction
		m   model.Medicine
		typ model.TransactionType
		dir string
	)
	if err := row.Scan(
		&t.ID,
		&t.MedicineID,
		&t.TxnTypeID,
		&t.TxnDate,
		&t.Quantity,
		&t.Remarks,
		&t.CreatedBy,
		&t.CreatedAt,
		&m.Name,
		&m.Unit,
		&m.DosageForm,
		&typ.Code,
		&typ.Label,
		&dir,
	); err != nil {
		return nil, err
	}
	m.ID = t.MedicineID
	typ.ID = t.TxnTypeID
	typ.Direction = model.Direction(dir)
	t.Medicine = &m
	t.TransactionType = &typ
	return &t, nil
}

// Create appends a ledger entry after locking the medicine row, rejecting
// dates outside the open period and consulting check with the current stock.
func (r *TransactionPostgres) Create(ctx context.Context, txn *model.StockTransaction, check repository.StockCheck) (*model.StockTransaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	// Taken before the period check so a concurrent month close either
	// commits first or waits for this write.
	if _, err := tx.ExecContext(ctx, `LOCK TABLE stock_transactions IN ROW EXCLUSIVE MODE`); err != nil {
		return nil, err
	}

	var locked string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM medicines WHERE id = $1 FOR UPDATE`, txn.MedicineID).Scan(&locked); err != nil {
		return nil, translate(err)
	}

	var closed bool
	if err := tx.QueryRowContext(ctx, `SELECT $1::date < `+openFromSQL, txn.TxnDate).Scan(&closed); err != nil {
		return nil, err
	}
	if closed {
		return nil, repository.ErrPeriodClosed
	}

	if check != nil {
		const qStock = `
			SELECT COALESCE(SUM(` + signedQuantitySQL + `), 0)
			FROM stock_transactions t
			JOIN transaction_types tt ON tt.id = t.txn_type_id
			WHERE t.medicine_id = $1 AND t.txn_date >= ` + openFromSQL
		var current int64
		if err := tx.QueryRowContext(ctx, qStock, txn.MedicineID).Scan(&current); err != nil {
			return nil, err
		}
		if err := check(current); err != nil {
			return nil, err
		}
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	out := *txn
	if typ, ok := model.LookupTransactionType(txn.TxnTypeID); ok {
		out.TransactionType = &typ
	}
	return &out, nil
}

func insertTransaction(ctx context.Context, q querier, txn *model.StockTransaction) error {
	const ins = `
		INSERT INTO stock_transactions (id, medicine_id, txn_type_id, txn_date, quantity, remarks, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.ExecContext(ctx, ins,
		txn.ID,
		txn.MedicineID,
		txn.TxnTypeID,
		txn.TxnDate,
		txn.Quantity,
		txn.Remarks,
		txn.CreatedBy,
		txn.CreatedAt,
	)
	return err
}

// List returns ledger entries newest first, optionally for one medicine.
func (r *TransactionPostgres) List(ctx context.Context, f model.TransactionFilter) (*repository.PageResult[model.StockTransaction], error) {
	const qCount = `SELECT COUNT(*) FROM stock_transactions WHERE ($1 = '' OR medicine_id::text = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, f.MedicineID).Scan(&total); err != nil {
		return nil, err
	}

	q := transactionSelectSQL + `
		WHERE ($1 = '' OR t.medicine_id::text = $1)
		ORDER BY t.txn_date DESC, t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, q, f.MedicineID, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	items, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.StockTransaction]{Items: items, Total: total}, nil
}

// ListByDate returns the entries dated day in insertion order.
func (r *TransactionPostgres) ListByDate(ctx context.Context, day model.Date) ([]model.StockTransaction, error) {
	q := transactionSelectSQL + `
		WHERE t.txn_date = $1
		ORDER BY t.created_at ASC, t.id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, day)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]model.StockTransaction, error) {
	defer rows.Close()
	items := make([]model.StockTransaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Types returns the transaction type enumeration in id order.
func (r *TransactionPostgres) Types(ctx context.Context) ([]model.TransactionType, error) {
	const q = `SELECT id, code, label, direction FROM transaction_types ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.TransactionType, 0)
	for rows.Next() {
		var (
			t   model.TransactionType
			dir string
		)
		if err := rows.Scan(&t.ID, &t.Code, &t.Label, &dir); err != nil {
			return nil, err
		}
		t.Direction = model.Direction(dir)
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
