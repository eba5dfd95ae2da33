// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
package repository

import (
	"context"
	"errors"
	"time"

	"medstock/internal/model"
)

var (
	// ErrNotFound is returned when a row addressed by id or key does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned on unique constraint violations.
	ErrConflict = errors.New("record already exists")
	// ErrInUse is returned when a row cannot be deleted because others reference it.
	ErrInUse = errors.New("record is referenced")
	// ErrPeriodClosed is returned when a ledger write targets a closed month.
	ErrPeriodClosed = errors.New("period is closed")
	// ErrPeriodNotOpen is returned when a month close targets any month other
	// than the first open one.
	ErrPeriodNotOpen = errors.New("period is not the open month")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// MedicineRepository persists the medicine catalog. Reads include the derived current stock.
type MedicineRepository interface {
	Create(ctx context.Context, m *model.Medicine) (*model.Medicine, error)
	FindByID(ctx context.Context, id string) (*model.Medicine, error)
	List(ctx context.Context) ([]model.Medicine, error)
	Update(ctx context.Context, m *model.Medicine) (*model.Medicine, error)
	// Delete removes a medicine. It returns ErrNotFound for a missing row and
	// ErrInUse when ledger entries reference it.
	Delete(ctx context.Context, id string) error
}

// StockCheck inspects the current stock of the medicine a transaction is about
// to be written for. A non-nil error aborts the write.
type StockCheck func(currentStock int64) error

// TransactionRepository persists the stock ledger.
type TransactionRepository interface {
	// Create appends txn. The medicine row is locked for the duration of the
	// write so that check sees a stock figure no concurrent write can change.
	Create(ctx context.Context, txn *model.StockTransaction, check StockCheck) (*model.StockTransaction, error)
	List(ctx context.Context, f model.TransactionFilter) (*PageResult[model.StockTransaction], error)
	ListByDate(ctx context.Context, day model.Date) ([]model.StockTransaction, error)
	Types(ctx context.Context) ([]model.TransactionType, error)
}

// ForwardPlanner receives the locked month activity and returns the
// carry-forward entries to insert.
type ForwardPlanner func(activity []model.MedicineActivity) ([]model.StockTransaction, error)

// ReportRepository aggregates the ledger and records month closes.
type ReportRepository interface {
	// Activity aggregates every medicine's ledger between from (inclusive) and to (exclusive).
	Activity(ctx context.Context, from, to model.Date) ([]model.MedicineActivity, error)
	// Close records mc and the entries returned by plan in one database
	// transaction. It returns ErrConflict when the month is already closed and
	// ErrPeriodNotOpen when from is not the start of the open month.
	Close(ctx context.Context, mc *model.MonthClose, from, to model.Date, plan ForwardPlanner) (*model.MonthClose, []model.MedicineActivity, error)
	SetArchiveKey(ctx context.Context, id, key string) error
	ListCloses(ctx context.Context) ([]model.MonthClose, error)
	// OpenMonth returns the first day of the month the next close must target:
	// the month after the latest close, or the month of the earliest ledger
	// entry when nothing is closed. It is the zero Date for an empty ledger
	// with no closes.
	OpenMonth(ctx context.Context) (model.Date, error)
}

// UserRepository persists dashboard accounts.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// Upsert creates the user or replaces the password hash and name of an existing username.
	Upsert(ctx context.Context, u *model.User) (*model.User, error)
}

// TokenRepository tracks revoked access tokens until they expire.
type TokenRepository interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
