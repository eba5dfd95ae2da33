package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medstock/internal/auth"
	"medstock/internal/model"
	"medstock/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*model.User)
	c, _ := args.Get(1).(*auth.Claims)
	return u, c, args.Error(2)
}

func (m *MockAuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) EnsureAdmin(ctx context.Context, username, password, name string) error {
	args := m.Called(ctx, username, password, name)
	return args.Error(0)
}

func (m *MockAuthService) PurgeRevoked(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
