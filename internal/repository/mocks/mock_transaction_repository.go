package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medstock/internal/model"
	"medstock/internal/repository"
)

// MockTransactionRepository runs the StockCheck passed to Create against the
// stock configured with CurrentStock, so service guards can be exercised.
type MockTransactionRepository struct {
	mock.Mock
	CurrentStock int64
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *model.StockTransaction, check repository.StockCheck) (*model.StockTransaction, error) {
	args := m.Called(ctx, txn)
	if check != nil {
		if err := check(m.CurrentStock); err != nil {
			return nil, err
		}
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StockTransaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, f model.TransactionFilter) (*repository.PageResult[model.StockTransaction], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.StockTransaction]), args.Error(1)
}

func (m *MockTransactionRepository) ListByDate(ctx context.Context, day model.Date) ([]model.StockTransaction, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StockTransaction), args.Error(1)
}

func (m *MockTransactionRepository) Types(ctx context.Context) ([]model.TransactionType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TransactionType), args.Error(1)
}
