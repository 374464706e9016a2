// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Login lockout policy.
const (
	MaxLoginAttempts   = 5
	LoginLockoutWindow = 15 * time.Minute
	// LoginAttemptRetention bounds how long attempt rows are kept. Older
	// rows are pruned opportunistically during login.
	LoginAttemptRetention = 24 * time.Hour
)

// LoginAttempt records an admin login attempt for lockout accounting.
// Failures within the lockout window count toward the limit; a success
// clears the caller's failures.
type LoginAttempt struct {
	ID        int64     `json:"id"`
	IPAddress string    `json:"ip_address"`
	DeviceID  string    `json:"device_id"`
	Email     string    `json:"email"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}
