// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Certificate expiry states. The state is derived from ExpiresAt at read
// time and never stored.
const (
	CertStatusValid        = "valid"
	CertStatusExpiringSoon = "expiring_soon"
	CertStatusExpired      = "expired"
)

// ExpiringSoonWindow is how far ahead of expiry a certificate is flagged.
const ExpiringSoonWindow = 30 * 24 * time.Hour

// Certificate is a compliance or quality credential.
type Certificate struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Issuer      sql.NullString `json:"issuer,omitempty"`
	Description sql.NullString `json:"description,omitempty"`
	ImageURL    sql.NullString `json:"image_url,omitempty"`
	IssuedAt    sql.NullTime   `json:"issued_at,omitempty"`
	ExpiresAt   sql.NullTime   `json:"expires_at,omitempty"`
	IsActive    bool           `json:"is_active"`
	Position    int64          `json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ExpiryStatus returns the certificate's derived expiry state at the given
// instant. Certificates without an expiry date are always valid.
func (c *Certificate) ExpiryStatus(now time.Time) string {
	if !c.ExpiresAt.Valid {
		return CertStatusValid
	}
	switch {
	case now.After(c.ExpiresAt.Time):
		return CertStatusExpired
	case now.Add(ExpiringSoonWindow).After(c.ExpiresAt.Time):
		return CertStatusExpiringSoon
	default:
		return CertStatusValid
	}
}
