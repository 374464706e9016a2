// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ratelimit implements a fixed-window rate limiter backed by
// database rows, shared across processes pointing at the same database.
package ratelimit

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/alrehab/agriexport-go/internal/store"
)

// Limit describes one fixed-window policy.
type Limit struct {
	Endpoint string
	Window   time.Duration
	Max      int64
}

// Preset limits.
var (
	// LimitAPI applies to general public API traffic.
	LimitAPI = Limit{Endpoint: "api", Window: time.Minute, Max: 60}
	// LimitAuth is a stricter policy for authentication endpoints. The
	// login flow has its own lockout state machine on top of this.
	LimitAuth = Limit{Endpoint: "auth", Window: time.Minute, Max: 10}
	// LimitContactForm throttles public form submissions.
	LimitContactForm = Limit{Endpoint: "contact-form", Window: 24 * time.Hour, Max: 5}
)

// Result is the outcome of a limiter check.
type Result struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// Limiter counts requests per (identifier, endpoint) in fixed windows.
// Storage errors fail open: the request is allowed and the error logged,
// so a degraded database never blocks public traffic.
type Limiter struct {
	queries *store.Queries
}

// New creates a Limiter on top of the given query layer.
func New(queries *store.Queries) *Limiter {
	return &Limiter{queries: queries}
}

// Check records one request for the identifier against the limit and
// reports whether it is allowed. Expired windows are reset inline; there
// is no background sweeper. Two concurrent calls may both read the same
// counter before either increments, letting an extra request slip through
// a window boundary. That is acceptable for abuse throttling.
func (l *Limiter) Check(ctx context.Context, identifier string, limit Limit) Result {
	now := time.Now()
	key := store.GetRateLimitParams{Identifier: identifier, Endpoint: limit.Endpoint}

	rl, err := l.queries.GetRateLimit(ctx, key)
	if err == sql.ErrNoRows || (err == nil && now.After(rl.ExpiresAt)) {
		return l.startWindow(ctx, identifier, limit, now)
	}
	if err != nil {
		slog.Error("rate limit lookup failed, allowing request",
			"identifier", identifier, "endpoint", limit.Endpoint, "error", err)
		return Result{Allowed: true, Remaining: limit.Max, ResetAt: now.Add(limit.Window)}
	}

	count, err := l.queries.IncrementRateLimit(ctx, key)
	if err != nil {
		slog.Error("rate limit increment failed, allowing request",
			"identifier", identifier, "endpoint", limit.Endpoint, "error", err)
		return Result{Allowed: true, Remaining: limit.Max, ResetAt: rl.ExpiresAt}
	}

	remaining := limit.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= limit.Max,
		Remaining: remaining,
		ResetAt:   rl.ExpiresAt,
	}
}

func (l *Limiter) startWindow(ctx context.Context, identifier string, limit Limit, now time.Time) Result {
	// A new window is a natural point to sweep rows other identifiers
	// left behind, so expired counters never need a background job.
	if err := l.queries.DeleteExpiredRateLimits(ctx, now); err != nil {
		slog.Debug("rate limit pruning failed", "error", err)
	}

	resetAt := now.Add(limit.Window)
	err := l.queries.ResetRateLimit(ctx, store.ResetRateLimitParams{
		Identifier:  identifier,
		Endpoint:    limit.Endpoint,
		WindowStart: now,
		ExpiresAt:   resetAt,
	})
	if err != nil {
		slog.Error("rate limit window reset failed, allowing request",
			"identifier", identifier, "endpoint", limit.Endpoint, "error", err)
	}
	return Result{Allowed: true, Remaining: limit.Max - 1, ResetAt: resetAt}
}
