package model

import "time"

// Role gates pocket listings and the admin console.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash *string    `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastSignInAt *time.Time `db:"last_sign_in_at" json:"last_sign_in_at"`
}

// Session is an authenticated viewer. It is created on sign-in and torn down
// on sign-out.
type Session struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Email     string    `db:"-" json:"email"`
	Role      Role      `db:"-" json:"role"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// IsAdmin reports whether the session may use the admin console.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
