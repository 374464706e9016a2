package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const createAdminUser = `-- name: CreateAdminUser :one
INSERT INTO admin_users (email, password_hash, name, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, email, password_hash, name, role, last_login_at, created_at, updated_at`

// CreateAdminUserParams holds parameters for CreateAdminUser.
type CreateAdminUserParams struct {
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateAdminUser inserts a new admin user.
func (q *Queries) CreateAdminUser(ctx context.Context, arg CreateAdminUserParams) (model.AdminUser, error) {
	row := q.db.QueryRowContext(ctx, createAdminUser,
		arg.Email,
		arg.PasswordHash,
		arg.Name,
		arg.Role,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var u model.AdminUser
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const getAdminUserByEmail = `-- name: GetAdminUserByEmail :one
SELECT id, email, password_hash, name, role, last_login_at, created_at, updated_at
FROM admin_users
WHERE email = ?`

// GetAdminUserByEmail fetches an admin user by email.
func (q *Queries) GetAdminUserByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	row := q.db.QueryRowContext(ctx, getAdminUserByEmail, email)
	var u model.AdminUser
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const getAdminUserByID = `-- name: GetAdminUserByID :one
SELECT id, email, password_hash, name, role, last_login_at, created_at, updated_at
FROM admin_users
WHERE id = ?`

// GetAdminUserByID fetches an admin user by ID.
func (q *Queries) GetAdminUserByID(ctx context.Context, id int64) (model.AdminUser, error) {
	row := q.db.QueryRowContext(ctx, getAdminUserByID, id)
	var u model.AdminUser
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const updateAdminPassword = `-- name: UpdateAdminPassword :exec
UPDATE admin_users SET password_hash = ?, updated_at = ? WHERE id = ?`

// UpdateAdminPasswordParams holds parameters for UpdateAdminPassword.
type UpdateAdminPasswordParams struct {
	ID           int64
	PasswordHash string
	UpdatedAt    time.Time
}

// UpdateAdminPassword replaces a user's password hash.
func (q *Queries) UpdateAdminPassword(ctx context.Context, arg UpdateAdminPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateAdminPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

const updateAdminLastLogin = `-- name: UpdateAdminLastLogin :exec
UPDATE admin_users SET last_login_at = ? WHERE id = ?`

// UpdateAdminLastLoginParams holds parameters for UpdateAdminLastLogin.
type UpdateAdminLastLoginParams struct {
	ID          int64
	LastLoginAt sql.NullTime
}

// UpdateAdminLastLogin stamps the user's last successful login time.
func (q *Queries) UpdateAdminLastLogin(ctx context.Context, arg UpdateAdminLastLoginParams) error {
	_, err := q.db.ExecContext(ctx, updateAdminLastLogin, arg.LastLoginAt, arg.ID)
	return err
}

const countAdminUsers = `-- name: CountAdminUsers :one
SELECT COUNT(*) FROM admin_users`

// CountAdminUsers returns the number of admin accounts.
func (q *Queries) CountAdminUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAdminUsers).Scan(&count)
	return count, err
}
