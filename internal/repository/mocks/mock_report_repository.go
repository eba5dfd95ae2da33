package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medstock/internal/model"
	"medstock/internal/repository"
)

// MockReportRepository feeds Activity to the ForwardPlanner passed to Close
// and returns the activity together with the planned forwards.
type MockReportRepository struct {
	mock.Mock
	Planned []model.StockTransaction
}

func (m *MockReportRepository) Activity(ctx context.Context, from, to model.Date) ([]model.MedicineActivity, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicineActivity), args.Error(1)
}

func (m *MockReportRepository) Close(ctx context.Context, mc *model.MonthClose, from, to model.Date, plan repository.ForwardPlanner) (*model.MonthClose, []model.MedicineActivity, error) {
	args := m.Called(ctx, mc, from, to)
	if err := args.Error(2); err != nil {
		return nil, nil, err
	}
	act, _ := args.Get(1).([]model.MedicineActivity)
	fwd, err := plan(act)
	if err != nil {
		return nil, nil, err
	}
	m.Planned = fwd
	out := *mc
	out.ForwardedCount = len(fwd)
	return &out, act, nil
}

func (m *MockReportRepository) SetArchiveKey(ctx context.Context, id, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

func (m *MockReportRepository) ListCloses(ctx context.Context) ([]model.MonthClose, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MonthClose), args.Error(1)
}

func (m *MockReportRepository) OpenMonth(ctx context.Context) (model.Date, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(model.Date)
	return d, args.Error(1)
}
