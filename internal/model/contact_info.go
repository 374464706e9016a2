// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// ContactInfoKeyMain is the key of the publicly readable contact record.
const ContactInfoKeyMain = "main"

// ContactInfo is a singleton-per-key contact record with upsert semantics.
type ContactInfo struct {
	ID        int64          `json:"id"`
	Key       string         `json:"key"`
	Email     sql.NullString `json:"email,omitempty"`
	Phone     sql.NullString `json:"phone,omitempty"`
	Whatsapp  sql.NullString `json:"whatsapp,omitempty"`
	Address   sql.NullString `json:"address,omitempty"`
	MapURL    sql.NullString `json:"map_url,omitempty"`
	Social    string         `json:"social"` // JSON object of network -> URL
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
