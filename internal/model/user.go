package model

import "time"

// Role is the access level carried in the JWT "role" claim.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// User mirrors the `users` table.  The password hash never leaves the
// server.
type User struct {
	ID           uint64    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserStats is the user summary shown on the admin dashboard.
type UserStats struct {
	TotalUsers  int64 `db:"total_users" json:"total_users"`
	AdminCount  int64 `db:"admin_count" json:"admin_count"`
	UserCount   int64 `db:"user_count" json:"user_count"`
	ActiveCount int64 `db:"active_count" json:"active_count"`
}
