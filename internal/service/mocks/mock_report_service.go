package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medstock/internal/model"
	"medstock/internal/stock"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Monthly(ctx context.Context, p stock.Period) ([]model.MonthlyReport, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MonthlyReport), args.Error(1)
}

func (m *MockReportService) CloseMonth(ctx context.Context, p stock.Period, closedBy string) (*model.MonthCloseResult, error) {
	args := m.Called(ctx, p, closedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MonthCloseResult), args.Error(1)
}

func (m *MockReportService) Closes(ctx context.Context) ([]model.MonthClose, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MonthClose), args.Error(1)
}

func (m *MockReportService) ArchiveURL(ctx context.Context, p stock.Period) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *MockReportService) OpenPeriod(ctx context.Context) (stock.Period, bool, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(stock.Period)
	return p, args.Bool(1), args.Error(2)
}
