// Package postgres implements the repository interfaces on PostgreSQL using
// database/sql with the pgx stdlib driver. Queries are parameterized and hold
// no business rules beyond what constraints and locks enforce.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"medstock/internal/model"
	"medstock/internal/repository"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// openFromSQL yields the first day of the open period: the month after the
// latest closed month, or the beginning of time when nothing is closed yet.
const openFromSQL = `(SELECT COALESCE(MAX(make_date(year, month, 1) + INTERVAL '1 month')::date, DATE '0001-01-01') FROM month_closes)`

// openMonthSQL yields the first day of the month the next close must target,
// ignoring the close with id $1. It is NULL when nothing is closed and the
// ledger is empty.
const openMonthSQL = `
	SELECT COALESCE(
		(SELECT MAX(make_date(year, month, 1) + INTERVAL '1 month')::date FROM month_closes WHERE id::text <> $1),
		(SELECT date_trunc('month', MIN(txn_date))::date FROM stock_transactions)
	)
`

func openMonth(ctx context.Context, q querier, excludeCloseID string) (model.Date, error) {
	var d model.Date
	if err := q.QueryRowContext(ctx, openMonthSQL, excludeCloseID).Scan(&d); err != nil {
		return model.Date{}, err
	}
	return d, nil
}

// signedQuantitySQL is the stock effect of a ledger row joined as t with its type as tt.
const signedQuantitySQL = `CASE WHEN tt.direction = 'out' THEN -t.quantity ELSE t.quantity END`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return repository.ErrConflict
		case pgForeignKeyViolation:
			return repository.ErrInUse
		}
	}
	return err
}

// rollback aborts tx, ignoring the error of an already finished transaction.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
