// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// RateLimit is a fixed-window counter row. The (identifier, endpoint)
// pair is unique; a request past ExpiresAt resets the row to a fresh
// window instead of inserting a new one.
type RateLimit struct {
	ID          int64     `json:"id"`
	Identifier  string    `json:"identifier"`
	Endpoint    string    `json:"endpoint"`
	Count       int64     `json:"count"`
	WindowStart time.Time `json:"window_start"`
	ExpiresAt   time.Time `json:"expires_at"`
}
