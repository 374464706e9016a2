package store

import (
	"context"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const createLoginAttempt = `-- name: CreateLoginAttempt :one
INSERT INTO login_attempts (ip_address, device_id, email, success, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, ip_address, device_id, email, success, created_at`

// CreateLoginAttemptParams holds parameters for CreateLoginAttempt.
type CreateLoginAttemptParams struct {
	IPAddress string
	DeviceID  string
	Email     string
	Success   bool
	CreatedAt time.Time
}

// CreateLoginAttempt records a login attempt.
func (q *Queries) CreateLoginAttempt(ctx context.Context, arg CreateLoginAttemptParams) (model.LoginAttempt, error) {
	row := q.db.QueryRowContext(ctx, createLoginAttempt,
		arg.IPAddress,
		arg.DeviceID,
		arg.Email,
		arg.Success,
		arg.CreatedAt,
	)
	var a model.LoginAttempt
	err := row.Scan(&a.ID, &a.IPAddress, &a.DeviceID, &a.Email, &a.Success, &a.CreatedAt)
	return a, err
}

const countRecentFailedAttempts = `-- name: CountRecentFailedAttempts :one
SELECT COUNT(*)
FROM login_attempts
WHERE ip_address = ? AND device_id = ? AND success = 0 AND created_at > ?`

// CountRecentFailedAttemptsParams holds parameters for CountRecentFailedAttempts.
type CountRecentFailedAttemptsParams struct {
	IPAddress string
	DeviceID  string
	Since     time.Time
}

// CountRecentFailedAttempts counts failures for an identity since the given time.
func (q *Queries) CountRecentFailedAttempts(ctx context.Context, arg CountRecentFailedAttemptsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countRecentFailedAttempts,
		arg.IPAddress, arg.DeviceID, arg.Since,
	).Scan(&count)
	return count, err
}

const oldestRecentFailedAttempt = `-- name: OldestRecentFailedAttempt :one
SELECT created_at
FROM login_attempts
WHERE ip_address = ? AND device_id = ? AND success = 0 AND created_at > ?
ORDER BY created_at ASC
LIMIT 1`

// OldestRecentFailedAttempt returns the oldest failure inside the window,
// used to compute when a lockout expires. The bare column is selected
// rather than MIN(created_at) because the aggregate strips the DATETIME
// declared type and the driver then returns a string.
func (q *Queries) OldestRecentFailedAttempt(ctx context.Context, arg CountRecentFailedAttemptsParams) (time.Time, error) {
	var t time.Time
	err := q.db.QueryRowContext(ctx, oldestRecentFailedAttempt,
		arg.IPAddress, arg.DeviceID, arg.Since,
	).Scan(&t)
	return t, err
}

const deleteFailedAttempts = `-- name: DeleteFailedAttempts :exec
DELETE FROM login_attempts
WHERE ip_address = ? AND device_id = ? AND success = 0`

// DeleteFailedAttemptsParams holds parameters for DeleteFailedAttempts.
type DeleteFailedAttemptsParams struct {
	IPAddress string
	DeviceID  string
}

// DeleteFailedAttempts clears an identity's failures after a successful login.
func (q *Queries) DeleteFailedAttempts(ctx context.Context, arg DeleteFailedAttemptsParams) error {
	_, err := q.db.ExecContext(ctx, deleteFailedAttempts, arg.IPAddress, arg.DeviceID)
	return err
}

const deleteExpiredLoginAttempts = `-- name: DeleteExpiredLoginAttempts :exec
DELETE FROM login_attempts WHERE created_at < ?`

// DeleteExpiredLoginAttempts prunes attempt rows older than the cutoff.
func (q *Queries) DeleteExpiredLoginAttempts(ctx context.Context, before time.Time) error {
	_, err := q.db.ExecContext(ctx, deleteExpiredLoginAttempts, before)
	return err
}
