package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
)

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("already exists")

// UserRepository backs the auth provider: users, sessions and one-time
// passcodes.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, created_at)
		VALUES (:id, :email, :password_hash, :role, :created_at)
	`, u)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("UserRepository.Create %s: %w", u.Email, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("UserRepository.Create: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.get(ctx, `SELECT id, email, password_hash, role, created_at, last_sign_in_at FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.get(ctx, `SELECT id, email, password_hash, role, created_at, last_sign_in_at FROM users WHERE id = $1`, id)
}

func (r *UserRepository) get(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("UserRepository.get: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("UserRepository.get: %w", err)
	}
	return &u, nil
}

// SetRole changes a user's role.
func (r *UserRepository) SetRole(ctx context.Context, id string, role model.Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("UserRepository.SetRole: %w", err)
	}
	return expectRow(res, "UserRepository.SetRole")
}

// SetPassword replaces a user's password hash.
func (r *UserRepository) SetPassword(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("UserRepository.SetPassword: %w", err)
	}
	return expectRow(res, "UserRepository.SetPassword")
}

// CreateSession stores a session row and stamps the user's last sign-in.
func (r *UserRepository) CreateSession(ctx context.Context, s *model.Session) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("UserRepository.BeginTxx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO auth_sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`,
		s.ID, s.UserID, s.ExpiresAt); err != nil {
		return fmt.Errorf("UserRepository.CreateSession insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET last_sign_in_at = now() WHERE id = $1`, s.UserID); err != nil {
		return fmt.Errorf("UserRepository.CreateSession stamp: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("UserRepository.CreateSession commit: %w", err)
	}
	return nil
}

// SessionActive reports whether the session exists, is not revoked and has
// not expired.
func (r *UserRepository) SessionActive(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM auth_sessions
		WHERE id = $1 AND revoked_at IS NULL AND expires_at > now()
	`, id)
	if err != nil {
		return false, fmt.Errorf("UserRepository.SessionActive: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) RevokeSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE auth_sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("UserRepository.RevokeSession: %w", err)
	}
	return nil
}

// SaveOTP replaces any pending passcode for email.
func (r *UserRepository) SaveOTP(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_otps (email, code_hash, expires_at)
		VALUES (lower($1), $2, $3)
		ON CONFLICT (email) DO UPDATE SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at
	`, email, codeHash, expiresAt)
	if err != nil {
		return fmt.Errorf("UserRepository.SaveOTP: %w", err)
	}
	return nil
}

// TakeOTP returns and deletes the pending unexpired passcode hash for email.
func (r *UserRepository) TakeOTP(ctx context.Context, email string) (string, error) {
	var hash string
	err := r.db.GetContext(ctx, &hash, `
		DELETE FROM auth_otps
		WHERE email = lower($1) AND expires_at > now()
		RETURNING code_hash
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("UserRepository.TakeOTP: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("UserRepository.TakeOTP: %w", err)
	}
	return hash, nil
}
