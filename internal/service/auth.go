package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"medstock/internal/auth"
	"medstock/internal/metrics"
	"medstock/internal/model"
	"medstock/internal/repository"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AuthService handles dashboard sign-in and bearer token verification.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Logout revokes the token described by claims until it would have expired.
	Logout(ctx context.Context, claims *auth.Claims) error
	// Authenticate verifies a bearer token and loads its account.
	Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	// EnsureAdmin creates or refreshes the seed administrator. It does nothing
	// when username or password is empty.
	EnsureAdmin(ctx context.Context, username, password, name string) error
	// PurgeRevoked forgets revocations of tokens that have expired anyway.
	PurgeRevoked(ctx context.Context) (int64, error)
}

type authService struct {
	users   repository.UserRepository
	revoked repository.TokenRepository
	tokens  *auth.Tokens
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserRepository, revoked repository.TokenRepository, tokens *auth.Tokens, m *metrics.Metrics, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{users: users, revoked: revoked, tokens: tokens, metrics: m, logger: logger, now: time.Now}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", "is required")
	}
	if password == "" {
		return nil, invalid("password", "is required")
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.LoginAttempt("invalid")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.metrics.LoginAttempt("invalid")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	s.metrics.LoginAttempt("success")
	s.logger.Info("user logged in", "username", u.Username)
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: *u}, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrUnauthorized
	}
	expires := s.now()
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := s.revoked.Revoke(ctx, claims.ID, expires); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error) {
	if token == "" {
		return nil, nil, ErrUnauthorized
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	return u, claims, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, password, name string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if name == "" {
		name = username
	}
	u, err := s.users.Upsert(ctx, &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("admin account ready", "username", u.Username)
	return nil
}

func (s *authService) PurgeRevoked(ctx context.Context) (int64, error) {
	return s.revoked.PurgeExpired(ctx, s.now())
}
