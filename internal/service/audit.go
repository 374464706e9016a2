// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alrehab/agriexport-go/internal/store"
)

// AuditEntry describes a single admin mutation for the audit trail.
// OldData and NewData are entity snapshots taken before and after the
// change; either may be nil (nil OldData for creates, nil NewData for
// deletes).
type AuditEntry struct {
	AdminID    int64
	AdminEmail string
	Action     string
	EntityType string
	EntityID   int64
	OldData    any
	NewData    any
	IPAddress  string
}

// RecordAudit writes one audit row through qtx, which callers bind to
// their mutation's transaction via Queries.WithTx so the audit record
// commits and rolls back with the change it describes. The snapshots
// are serialized to JSON; a snapshot that fails to marshal aborts the
// write so a mutation is never committed with a corrupt trail.
func RecordAudit(ctx context.Context, qtx *store.Queries, entry AuditEntry) error {
	oldData, err := marshalSnapshot(entry.OldData)
	if err != nil {
		return fmt.Errorf("marshaling old snapshot: %w", err)
	}
	newData, err := marshalSnapshot(entry.NewData)
	if err != nil {
		return fmt.Errorf("marshaling new snapshot: %w", err)
	}

	var entityID sql.NullInt64
	if entry.EntityID != 0 {
		entityID = sql.NullInt64{Int64: entry.EntityID, Valid: true}
	}

	_, err = qtx.CreateAuditLog(ctx, store.CreateAuditLogParams{
		AdminID:    sql.NullInt64{Int64: entry.AdminID, Valid: entry.AdminID != 0},
		AdminEmail: entry.AdminEmail,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entityID,
		OldData:    oldData,
		NewData:    newData,
		IPAddress:  entry.IPAddress,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

func marshalSnapshot(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
