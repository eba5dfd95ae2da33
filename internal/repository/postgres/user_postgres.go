package postgres

import (
	"context"
	"database/sql"
	"time"

	"medstock/internal/model"
	"medstock/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserPostgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT id, username, name, password_hash, role, created_at FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, username))
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, username, name, password_hash, role, created_at FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserPostgres) Upsert(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, username, name, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username) DO UPDATE SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash
		RETURNING id, username, name, password_hash, role, created_at
	`
	return scanUser(r.db.QueryRowContext(ctx, q, u.ID, u.Username, u.Name, u.PasswordHash, u.Role, u.CreatedAt))
}

// TokenPostgres is a PostgreSQL implementation of repository.TokenRepository.
type TokenPostgres struct {
	db *sql.DB
}

// NewTokenPostgres creates a new TokenPostgres repository.
func NewTokenPostgres(db *sql.DB) *TokenPostgres {
	return &TokenPostgres{db: db}
}

var _ repository.TokenRepository = (*TokenPostgres)(nil)

func (r *TokenPostgres) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	const q = `INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2) ON CONFLICT (jti) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, jti, expiresAt)
	return err
}

func (r *TokenPostgres) IsRevoked(ctx context.Context, jti string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`
	var revoked bool
	if err := r.db.QueryRowContext(ctx, q, jti).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

// PurgeExpired deletes revocations whose token would have expired anyway.
func (r *TokenPostgres) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM revoked_tokens WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
