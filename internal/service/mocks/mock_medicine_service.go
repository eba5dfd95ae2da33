package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medstock/internal/model"
	"medstock/internal/service"
)

type MockMedicineService struct {
	mock.Mock
}

func (m *MockMedicineService) List(ctx context.Context, query string) ([]model.Medicine, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Medicine), args.Error(1)
}

func (m *MockMedicineService) Get(ctx context.Context, id string) (*model.Medicine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockMedicineService) Create(ctx context.Context, in service.MedicineInput) (*model.Medicine, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockMedicineService) Update(ctx context.Context, id string, patch model.MedicinePatch) (*model.Medicine, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockMedicineService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
