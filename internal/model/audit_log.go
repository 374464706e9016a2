// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Audit actions.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
	AuditActionLogin  = "LOGIN"
)

// AuditLog records an admin mutation. Rows are written in the same
// transaction as the mutation they describe. OldData is absent on create,
// NewData is absent on delete.
type AuditLog struct {
	ID         int64          `json:"id"`
	AdminID    sql.NullInt64  `json:"admin_id"`
	AdminEmail string         `json:"admin_email"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   sql.NullInt64  `json:"entity_id"`
	OldData    sql.NullString `json:"old_data,omitempty"` // JSON snapshot
	NewData    sql.NullString `json:"new_data,omitempty"` // JSON snapshot
	IPAddress  string         `json:"ip_address"`
	CreatedAt  time.Time      `json:"created_at"`
}
