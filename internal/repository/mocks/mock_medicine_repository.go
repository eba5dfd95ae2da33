package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medstock/internal/model"
)

type MockMedicineRepository struct {
	mock.Mock
}

func (m *MockMedicineRepository) Create(ctx context.Context, med *model.Medicine) (*model.Medicine, error) {
	args := m.Called(ctx, med)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) FindByID(ctx context.Context, id string) (*model.Medicine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) List(ctx context.Context) ([]model.Medicine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) Update(ctx context.Context, med *model.Medicine) (*model.Medicine, error) {
	args := m.Called(ctx, med)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
