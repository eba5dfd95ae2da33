package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medstock/internal/metrics"
	"medstock/internal/model"
	"medstock/internal/repository"
	"medstock/internal/stock"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// TransactionInput is the payload for recording a stock-in or dispense.
// A zero TxnDate means today in the service's location.
type TransactionInput struct {
	MedicineID string     `json:"medicine_id"`
	TxnTypeID  int        `json:"txn_type_id"`
	TxnDate    model.Date `json:"txn_date"`
	Quantity   int64      `json:"quantity"`
	Remarks    string     `json:"remarks"`
}

// TransactionListResult is a page of ledger entries.
type TransactionListResult struct {
	Items  []model.StockTransaction `json:"data"`
	Total  int                      `json:"total"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}

// DailyReport lists one day's ledger entries with in and out totals.
type DailyReport struct {
	Date           model.Date               `json:"date"`
	Transactions   []model.StockTransaction `json:"transactions"`
	TotalStockIn   int64                    `json:"total_stock_in"`
	TotalDispensed int64                    `json:"total_dispensed"`
}

// TransactionService records and queries the stock ledger.
type TransactionService interface {
	List(ctx context.Context, f model.TransactionFilter) (*TransactionListResult, error)
	// Create validates and appends a stock-in or dispense entry. Dispensing more
	// than the current stock fails with ErrInsufficientStock.
	Create(ctx context.Context, in TransactionInput, createdBy string) (*model.StockTransaction, error)
	Types(ctx context.Context) ([]model.TransactionType, error)
	Daily(ctx context.Context, day model.Date) (*DailyReport, error)
}

type transactionService struct {
	repo    repository.TransactionRepository
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
}

// NewTransactionService constructs a TransactionService. loc decides what
// "today" is for entries submitted without a date.
func NewTransactionService(repo repository.TransactionRepository, m *metrics.Metrics, loc *time.Location) TransactionService {
	if loc == nil {
		loc = time.UTC
	}
	return &transactionService{repo: repo, metrics: m, loc: loc, now: time.Now}
}

func (s *transactionService) List(ctx context.Context, f model.TransactionFilter) (*TransactionListResult, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	res, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Items: res.Items, Total: res.Total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *transactionService) Create(ctx context.Context, in TransactionInput, createdBy string) (*model.StockTransaction, error) {
	in.MedicineID = strings.TrimSpace(in.MedicineID)
	if in.MedicineID == "" {
		return nil, invalid("medicine_id", "is required")
	}
	typ, ok := model.LookupTransactionType(in.TxnTypeID)
	if !ok {
		return nil, invalid("txn_type_id", "is not a known transaction type")
	}
	if typ.Direction == model.DirectionOpening {
		return nil, invalid("txn_type_id", "forward entries are created by month close only")
	}
	if in.Quantity <= 0 {
		return nil, invalid("quantity", "must be a positive integer")
	}

	now := s.now()
	date := in.TxnDate
	if date.IsZero() {
		date = model.NewDate(now.In(s.loc))
	}

	txn := &model.StockTransaction{
		ID:         uuid.NewString(),
		MedicineID: in.MedicineID,
		TxnTypeID:  typ.ID,
		TxnDate:    date,
		Quantity:   in.Quantity,
		Remarks:    strings.TrimSpace(in.Remarks),
		CreatedBy:  createdBy,
		CreatedAt:  now.UTC(),
	}

	var check repository.StockCheck
	if typ.Direction == model.DirectionOut {
		check = func(current int64) error {
			if in.Quantity > current {
				return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, in.Quantity, current)
			}
			return nil
		}
	}

	out, err := s.repo.Create(ctx, txn, check)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientStock):
			return nil, err
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrMedicineNotFound
		case errors.Is(err, repository.ErrPeriodClosed):
			return nil, fmt.Errorf("%w: %s", ErrPeriodClosed, stock.PeriodOf(date.Time))
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.metrics.TransactionRecorded(typ.Code, txn.Quantity)
	return out, nil
}

func (s *transactionService) Types(ctx context.Context) ([]model.TransactionType, error) {
	return s.repo.Types(ctx)
}

func (s *transactionService) Daily(ctx context.Context, day model.Date) (*DailyReport, error) {
	if day.IsZero() {
		day = model.NewDate(s.now().In(s.loc))
	}
	txns, err := s.repo.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	in, out := stock.DayTotals(day, txns)
	return &DailyReport{Date: day, Transactions: txns, TotalStockIn: in, TotalDispensed: out}, nil
}
