package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const exportRequestColumns = `id, company_name, contact_name, email, phone, country, product_interest, quantity, message, source, status, responded_at, created_at, updated_at`

const createExportRequest = `-- name: CreateExportRequest :one
INSERT INTO export_requests (company_name, contact_name, email, phone, country, product_interest, quantity, message, source, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + exportRequestColumns

// CreateExportRequestParams holds parameters for CreateExportRequest.
type CreateExportRequestParams struct {
	CompanyName     sql.NullString
	ContactName     string
	Email           string
	Phone           sql.NullString
	Country         sql.NullString
	ProductInterest sql.NullString
	Quantity        sql.NullString
	Message         sql.NullString
	Source          string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateExportRequest inserts a new export request.
func (q *Queries) CreateExportRequest(ctx context.Context, arg CreateExportRequestParams) (model.ExportRequest, error) {
	row := q.db.QueryRowContext(ctx, createExportRequest,
		arg.CompanyName,
		arg.ContactName,
		arg.Email,
		arg.Phone,
		arg.Country,
		arg.ProductInterest,
		arg.Quantity,
		arg.Message,
		arg.Source,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanExportRequest(row)
}

const getExportRequestByID = `-- name: GetExportRequestByID :one
SELECT ` + exportRequestColumns + ` FROM export_requests WHERE id = ?`

// GetExportRequestByID fetches an export request by ID.
func (q *Queries) GetExportRequestByID(ctx context.Context, id int64) (model.ExportRequest, error) {
	return scanExportRequest(q.db.QueryRowContext(ctx, getExportRequestByID, id))
}

// ListExportRequestsParams holds filters for ListExportRequests and
// CountExportRequests. Null filter fields are not applied.
type ListExportRequestsParams struct {
	Status sql.NullString
	Source sql.NullString
	Limit  int64
	Offset int64
}

func exportRequestFilter(arg ListExportRequestsParams) (string, []interface{}) {
	var where []string
	var args []interface{}
	if arg.Status.Valid {
		where = append(where, "status = ?")
		args = append(args, arg.Status.String)
	}
	if arg.Source.Valid {
		where = append(where, "source = ?")
		args = append(args, arg.Source.String)
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// ListExportRequests returns export requests matching the filters, newest first.
func (q *Queries) ListExportRequests(ctx context.Context, arg ListExportRequestsParams) ([]model.ExportRequest, error) {
	where, args := exportRequestFilter(arg)
	query := "SELECT " + exportRequestColumns + " FROM export_requests" + where +
		" ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ExportRequest
	for rows.Next() {
		var er model.ExportRequest
		if err := rows.Scan(
			&er.ID,
			&er.CompanyName,
			&er.ContactName,
			&er.Email,
			&er.Phone,
			&er.Country,
			&er.ProductInterest,
			&er.Quantity,
			&er.Message,
			&er.Source,
			&er.Status,
			&er.RespondedAt,
			&er.CreatedAt,
			&er.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, er)
	}
	return items, rows.Err()
}

// CountExportRequests returns the number of export requests matching the filters.
func (q *Queries) CountExportRequests(ctx context.Context, arg ListExportRequestsParams) (int64, error) {
	where, args := exportRequestFilter(arg)
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM export_requests"+where, args...).Scan(&count)
	return count, err
}

const updateExportRequestStatus = `-- name: UpdateExportRequestStatus :one
UPDATE export_requests
SET status = ?, responded_at = ?, updated_at = ?
WHERE id = ?
RETURNING ` + exportRequestColumns

// UpdateExportRequestStatusParams holds parameters for UpdateExportRequestStatus.
// RespondedAt carries the existing value unless this transition stamps it.
type UpdateExportRequestStatusParams struct {
	ID          int64
	Status      string
	RespondedAt sql.NullTime
	UpdatedAt   time.Time
}

// UpdateExportRequestStatus changes a request's workflow status.
func (q *Queries) UpdateExportRequestStatus(ctx context.Context, arg UpdateExportRequestStatusParams) (model.ExportRequest, error) {
	row := q.db.QueryRowContext(ctx, updateExportRequestStatus,
		arg.Status,
		arg.RespondedAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanExportRequest(row)
}

const deleteExportRequest = `-- name: DeleteExportRequest :exec
DELETE FROM export_requests WHERE id = ?`

// DeleteExportRequest removes an export request.
func (q *Queries) DeleteExportRequest(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteExportRequest, id)
	return err
}

func scanExportRequest(row *sql.Row) (model.ExportRequest, error) {
	var er model.ExportRequest
	err := row.Scan(
		&er.ID,
		&er.CompanyName,
		&er.ContactName,
		&er.Email,
		&er.Phone,
		&er.Country,
		&er.ProductInterest,
		&er.Quantity,
		&er.Message,
		&er.Source,
		&er.Status,
		&er.RespondedAt,
		&er.CreatedAt,
		&er.UpdatedAt,
	)
	return er, err
}
