package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/envirowatch/internal/model"
)

const userColumns = "id, email, password_hash, full_name, role, is_active, created_at, updated_at"

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user and returns the stored row.  The email is
// normalised to lower case.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, fullName string, role model.Role) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, role) VALUES (?, ?, ?, ?)",
		email, passwordHash, fullName, role)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user id: %w", err)
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalised email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &u, nil
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := r.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC"); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRole changes a user's role.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) (*model.User, error) {
	return r.update(ctx, id, "UPDATE users SET role = ? WHERE id = ?", role, id)
}

// UpdateActive activates or deactivates a user.
func (r *UserRepo) UpdateActive(ctx context.Context, id uint64, active bool) (*model.User, error) {
	return r.update(ctx, id, "UPDATE users SET is_active = ? WHERE id = ?", active, id)
}

// UpdateProfile changes the full name and/or password hash; nil arguments
// keep the current value.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fullName, passwordHash *string) (*model.User, error) {
	return r.update(ctx, id,
		"UPDATE users SET full_name = COALESCE(?, full_name), password_hash = COALESCE(?, password_hash) WHERE id = ?",
		fullName, passwordHash, id)
}

func (r *UserRepo) update(ctx context.Context, id uint64, query string, args ...any) (*model.User, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user.  Their chat sessions go with them; points they
// created keep existing with a NULL creator.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Stats counts users by role and activity.
func (r *UserRepo) Stats(ctx context.Context) (model.UserStats, error) {
	var s model.UserStats
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS total_users,
		       COALESCE(SUM(CASE WHEN role = 'admin' THEN 1 ELSE 0 END), 0) AS admin_count,
		       COALESCE(SUM(CASE WHEN role = 'user' THEN 1 ELSE 0 END), 0) AS user_count,
		       COALESCE(SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END), 0) AS active_count
		FROM users`)
	if err != nil {
		return s, fmt.Errorf("user stats: %w", err)
	}
	return s, nil
}
