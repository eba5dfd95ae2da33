package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"medstock/internal/model"
	"medstock/internal/repository"
)

// ReportPostgres is a PostgreSQL implementation of repository.ReportRepository.
type ReportPostgres struct {
	db *sql.DB
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

const activitySQL = `
		SELECT m.id, m.name, m.unit, m.dosage_form, m.description, m.created_at, m.updated_at,
		       COALESCE(SUM(t.quantity) FILTER (WHERE t.txn_type_id = $3), 0) AS opening,
		       COALESCE(SUM(t.quantity) FILTER (WHERE t.txn_type_id = $4), 0) AS total_return,
		       COALESCE(SUM(t.quantity) FILTER (WHERE t.txn_type_id = $5), 0) AS total_donation,
		       COALESCE(SUM(t.quantity) FILTER (WHERE t.txn_type_id = $6), 0) AS total_new_added,
		       COALESCE(SUM(t.quantity) FILTER (WHERE tt.direction = 'out'), 0) AS total_dispensed
		FROM medicines m
		LEFT JOIN stock_transactions t ON t.medicine_id = m.id AND t.txn_date >= $1 AND t.txn_date < $2
		LEFT JOIN transaction_types tt ON tt.id = t.txn_type_id
		GROUP BY m.id
		ORDER BY m.name ASC
`

func activity(ctx context.Context, q querier, from, to model.Date) ([]model.MedicineActivity, error) {
	rows, err := q.QueryContext(ctx, activitySQL, from, to,
		model.TxnForward, model.TxnReturn, model.TxnDonation, model.TxnNewAdded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MedicineActivity, 0)
	for rows.Next() {
		var a model.MedicineActivity
		if err := rows.Scan(
			&a.Medicine.ID,
			&a.Medicine.Name,
			&a.Medicine.Unit,
			&a.Medicine.DosageForm,
			&a.Medicine.Description,
			&a.Medicine.CreatedAt,
			&a.Medicine.UpdatedAt,
			&a.Opening,
			&a.Return,
			&a.Donation,
			&a.NewAdded,
			&a.Dispensed,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Activity aggregates every medicine's ledger in [from, to).
func (r *ReportPostgres) Activity(ctx context.Context, from, to model.Date) ([]model.MedicineActivity, error) {
	return activity(ctx, r.db, from, to)
}

// Close records the month close, freezes the ledger against concurrent
// writers, checks that [from, to) is the open month, aggregates it and inserts
// the planned forwards, all in one transaction.
func (r *ReportPostgres) Close(ctx context.Context, mc *model.MonthClose, from, to model.Date, plan repository.ForwardPlanner) (*model.MonthClose, []model.MedicineActivity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer rollback(tx)

	const ins = `
		INSERT INTO month_closes (id, year, month, closed_by, closed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, ins, mc.ID, mc.Year, mc.Month, mc.ClosedBy, mc.ClosedAt); err != nil {
		return nil, nil, translate(err)
	}

	if _, err := tx.ExecContext(ctx, `LOCK TABLE stock_transactions IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, nil, err
	}

	open, err := openMonth(ctx, tx, mc.ID)
	if err != nil {
		return nil, nil, err
	}
	if !open.IsZero() && !open.Equal(from.Time) {
		return nil, nil, fmt.Errorf("%w: open month starts %s", repository.ErrPeriodNotOpen, open)
	}

	act, err := activity(ctx, tx, from, to)
	if err != nil {
		return nil, nil, err
	}

	forwards, err := plan(act)
	if err != nil {
		return nil, nil, err
	}
	for i := range forwards {
		if err := insertTransaction(ctx, tx, &forwards[i]); err != nil {
			return nil, nil, translate(err)
		}
	}

	const upd = `UPDATE month_closes SET forwarded_count = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, upd, mc.ID, len(forwards)); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	out := *mc
	out.ForwardedCount = len(forwards)
	return &out, act, nil
}

// SetArchiveKey stores the object key of a close's archived report.
func (r *ReportPostgres) SetArchiveKey(ctx context.Context, id, key string) error {
	const q = `UPDATE month_closes SET archive_key = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, key)
	return err
}

// ListCloses returns the close history, most recent month first.
func (r *ReportPostgres) ListCloses(ctx context.Context) ([]model.MonthClose, error) {
	const q = `
		SELECT id, year, month, closed_by, closed_at, forwarded_count, archive_key
		FROM month_closes
		ORDER BY year DESC, month DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MonthClose, 0)
	for rows.Next() {
		var c model.MonthClose
		if err := rows.Scan(&c.ID, &c.Year, &c.Month, &c.ClosedBy, &c.ClosedAt, &c.ForwardedCount, &c.ArchiveKey); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// OpenMonth returns the first day of the month the next close must target.
func (r *ReportPostgres) OpenMonth(ctx context.Context) (model.Date, error) {
	return openMonth(ctx, r.db, "")
}
