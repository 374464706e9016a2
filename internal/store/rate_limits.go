package store

import (
	"context"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const getRateLimit = `-- name: GetRateLimit :one
SELECT id, identifier, endpoint, count, window_start, expires_at
FROM rate_limits
WHERE identifier = ? AND endpoint = ?`

// GetRateLimitParams identifies a fixed-window counter row.
type GetRateLimitParams struct {
	Identifier string
	Endpoint   string
}

// GetRateLimit fetches the counter row for an identifier and endpoint.
func (q *Queries) GetRateLimit(ctx context.Context, arg GetRateLimitParams) (model.RateLimit, error) {
	row := q.db.QueryRowContext(ctx, getRateLimit, arg.Identifier, arg.Endpoint)
	var rl model.RateLimit
	err := row.Scan(&rl.ID, &rl.Identifier, &rl.Endpoint, &rl.Count, &rl.WindowStart, &rl.ExpiresAt)
	return rl, err
}

const resetRateLimit = `-- name: ResetRateLimit :exec
INSERT INTO rate_limits (identifier, endpoint, count, window_start, expires_at)
VALUES (?, ?, 1, ?, ?)
ON CONFLICT(identifier, endpoint) DO UPDATE SET
    count = 1,
    window_start = excluded.window_start,
    expires_at = excluded.expires_at`

// ResetRateLimitParams holds parameters for ResetRateLimit.
type ResetRateLimitParams struct {
	Identifier  string
	Endpoint    string
	WindowStart time.Time
	ExpiresAt   time.Time
}

// ResetRateLimit starts a fresh window with a count of one, creating the
// row if it does not exist.
func (q *Queries) ResetRateLimit(ctx context.Context, arg ResetRateLimitParams) error {
	_, err := q.db.ExecContext(ctx, resetRateLimit,
		arg.Identifier, arg.Endpoint, arg.WindowStart, arg.ExpiresAt,
	)
	return err
}

const incrementRateLimit = `-- name: IncrementRateLimit :one
UPDATE rate_limits
SET count = count + 1
WHERE identifier = ? AND endpoint = ?
RETURNING count`

// IncrementRateLimit bumps the current window's counter and returns the
// new count.
func (q *Queries) IncrementRateLimit(ctx context.Context, arg GetRateLimitParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, incrementRateLimit, arg.Identifier, arg.Endpoint).Scan(&count)
	return count, err
}

const deleteExpiredRateLimits = `-- name: DeleteExpiredRateLimits :exec
DELETE FROM rate_limits WHERE expires_at < ?`

// DeleteExpiredRateLimits prunes counter rows whose window has passed.
func (q *Queries) DeleteExpiredRateLimits(ctx context.Context, before time.Time) error {
	_, err := q.db.ExecContext(ctx, deleteExpiredRateLimits, before)
	return err
}
