package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const auditLogColumns = `id, admin_id, admin_email, action, entity_type, entity_id, old_data, new_data, ip_address, created_at`

const createAuditLog = `-- name: CreateAuditLog :one
INSERT INTO audit_logs (admin_id, admin_email, action, entity_type, entity_id, old_data, new_data, ip_address, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + auditLogColumns

// CreateAuditLogParams holds parameters for CreateAuditLog.
type CreateAuditLogParams struct {
	AdminID    sql.NullInt64
	AdminEmail string
	Action     string
	EntityType string
	EntityID   sql.NullInt64
	OldData    sql.NullString
	NewData    sql.NullString
	IPAddress  string
	CreatedAt  time.Time
}

// CreateAuditLog inserts an audit record. Call through Queries.WithTx so
// the row commits together with the mutation it describes.
func (q *Queries) CreateAuditLog(ctx context.Context, arg CreateAuditLogParams) (model.AuditLog, error) {
	row := q.db.QueryRowContext(ctx, createAuditLog,
		arg.AdminID,
		arg.AdminEmail,
		arg.Action,
		arg.EntityType,
		arg.EntityID,
		arg.OldData,
		arg.NewData,
		arg.IPAddress,
		arg.CreatedAt,
	)
	return scanAuditLog(row)
}

// ListAuditLogsParams holds filters for ListAuditLogs and CountAuditLogs.
type ListAuditLogsParams struct {
	EntityType sql.NullString
	Action     sql.NullString
	Limit      int64
	Offset     int64
}

func auditLogFilter(arg ListAuditLogsParams) (string, []interface{}) {
	var where []string
	var args []interface{}
	if arg.EntityType.Valid {
		where = append(where, "entity_type = ?")
		args = append(args, arg.EntityType.String)
	}
	if arg.Action.Valid {
		where = append(where, "action = ?")
		args = append(args, arg.Action.String)
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// ListAuditLogs returns audit records matching the filters, newest first.
func (q *Queries) ListAuditLogs(ctx context.Context, arg ListAuditLogsParams) ([]model.AuditLog, error) {
	where, args := auditLogFilter(arg)
	query := "SELECT " + auditLogColumns + " FROM audit_logs" + where +
		" ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.AuditLog
	for rows.Next() {
		var al model.AuditLog
		if err := rows.Scan(
			&al.ID,
			&al.AdminID,
			&al.AdminEmail,
			&al.Action,
			&al.EntityType,
			&al.EntityID,
			&al.OldData,
			&al.NewData,
			&al.IPAddress,
			&al.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, al)
	}
	return items, rows.Err()
}

// CountAuditLogs returns the number of audit records matching the filters.
func (q *Queries) CountAuditLogs(ctx context.Context, arg ListAuditLogsParams) (int64, error) {
	where, args := auditLogFilter(arg)
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs"+where, args...).Scan(&count)
	return count, err
}

func scanAuditLog(row *sql.Row) (model.AuditLog, error) {
	var al model.AuditLog
	err := row.Scan(
		&al.ID,
		&al.AdminID,
		&al.AdminEmail,
		&al.Action,
		&al.EntityType,
		&al.EntityID,
		&al.OldData,
		&al.NewData,
		&al.IPAddress,
		&al.CreatedAt,
	)
	return al, err
}
