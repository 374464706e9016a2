// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/store"
)

// LoginProtection provides database-backed lockout protection for the
// admin login endpoint. Failed attempts are keyed by client IP plus
// device ID so a shared office IP does not lock out every admin at once.
type LoginProtection struct {
	queries *store.Queries

	maxFailedAttempts int
	attemptWindow     time.Duration
	retention         time.Duration
}

// NewLoginProtection creates a login protection service with the
// standard limits.
func NewLoginProtection(db *sql.DB) *LoginProtection {
	return &LoginProtection{
		queries:           store.New(db),
		maxFailedAttempts: model.MaxLoginAttempts,
		attemptWindow:     model.LoginLockoutWindow,
		retention:         model.LoginAttemptRetention,
	}
}

// IsLocked checks whether the identity has exhausted its failed attempts
// inside the current window. Returns the remaining lockout duration when
// locked. Storage errors fail open so a database hiccup cannot lock every
// admin out.
func (lp *LoginProtection) IsLocked(ctx context.Context, ip, deviceID string) (bool, time.Duration) {
	now := time.Now()

	// Every login passes through here, so pruning rides along and the
	// table stays small without a dedicated job.
	if err := lp.queries.DeleteExpiredLoginAttempts(ctx, now.Add(-lp.retention)); err != nil {
		slog.Debug("login attempt pruning failed", "error", err)
	}

	params := store.CountRecentFailedAttemptsParams{
		IPAddress: ip,
		DeviceID:  deviceID,
		Since:     now.Add(-lp.attemptWindow),
	}

	count, err := lp.queries.CountRecentFailedAttempts(ctx, params)
	if err != nil {
		slog.Error("login attempt count failed", "error", err, "ip", ip)
		return false, 0
	}
	if count < int64(lp.maxFailedAttempts) {
		return false, 0
	}

	// The lockout lasts until the oldest failure ages out of the window.
	oldest, err := lp.queries.OldestRecentFailedAttempt(ctx, params)
	if err != nil {
		slog.Error("login attempt lookup failed", "error", err, "ip", ip)
		return true, lp.attemptWindow
	}

	remaining := time.Until(oldest.Add(lp.attemptWindow))
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining
}

// RecordFailedAttempt stores a failed login and reports whether the
// identity is now locked.
func (lp *LoginProtection) RecordFailedAttempt(ctx context.Context, ip, deviceID, email string) bool {
	now := time.Now()
	_, err := lp.queries.CreateLoginAttempt(ctx, store.CreateLoginAttemptParams{
		IPAddress: ip,
		DeviceID:  deviceID,
		Email:     email,
		Success:   false,
		CreatedAt: now,
	})
	if err != nil {
		slog.Error("failed to record login attempt", "error", err, "ip", ip)
		return false
	}

	count, err := lp.queries.CountRecentFailedAttempts(ctx, store.CountRecentFailedAttemptsParams{
		IPAddress: ip,
		DeviceID:  deviceID,
		Since:     now.Add(-lp.attemptWindow),
	})
	if err != nil {
		slog.Error("login attempt count failed", "error", err, "ip", ip)
		return false
	}

	if count >= int64(lp.maxFailedAttempts) {
		slog.Warn("login locked due to failed attempts",
			"ip", ip,
			"count", count,
			"window", lp.attemptWindow,
		)
		return true
	}
	return false
}

// RecordSuccessfulLogin stores a successful attempt and clears the
// identity's failure history so the next mistake starts a fresh count.
func (lp *LoginProtection) RecordSuccessfulLogin(ctx context.Context, ip, deviceID, email string) {
	now := time.Now()
	if _, err := lp.queries.CreateLoginAttempt(ctx, store.CreateLoginAttemptParams{
		IPAddress: ip,
		DeviceID:  deviceID,
		Email:     email,
		Success:   true,
		CreatedAt: now,
	}); err != nil {
		slog.Error("failed to record login attempt", "error", err, "ip", ip)
	}

	if err := lp.queries.DeleteFailedAttempts(ctx, store.DeleteFailedAttemptsParams{
		IPAddress: ip,
		DeviceID:  deviceID,
	}); err != nil {
		slog.Error("failed to clear login attempts", "error", err, "ip", ip)
	}
}

// RemainingAttempts returns how many failures are left before lockout.
func (lp *LoginProtection) RemainingAttempts(ctx context.Context, ip, deviceID string) int {
	count, err := lp.queries.CountRecentFailedAttempts(ctx, store.CountRecentFailedAttemptsParams{
		IPAddress: ip,
		DeviceID:  deviceID,
		Since:     time.Now().Add(-lp.attemptWindow),
	})
	if err != nil {
		return lp.maxFailedAttempts
	}

	remaining := lp.maxFailedAttempts - int(count)
	if remaining < 0 {
		return 0
	}
	return remaining
}
