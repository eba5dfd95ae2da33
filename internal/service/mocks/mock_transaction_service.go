package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medstock/internal/model"
	"medstock/internal/service"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) List(ctx context.Context, f model.TransactionFilter) (*service.TransactionListResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransactionListResult), args.Error(1)
}

func (m *MockTransactionService) Create(ctx context.Context, in service.TransactionInput, createdBy string) (*model.StockTransaction, error) {
	args := m.Called(ctx, in, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StockTransaction), args.Error(1)
}

func (m *MockTransactionService) Types(ctx context.Context) ([]model.TransactionType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TransactionType), args.Error(1)
}

func (m *MockTransactionService) Daily(ctx context.Context, day model.Date) (*service.DailyReport, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DailyReport), args.Error(1)
}
