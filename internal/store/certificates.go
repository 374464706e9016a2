package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const certificateColumns = `id, name, slug, issuer, description, image_url, issued_at, expires_at, is_active, position, created_at, updated_at`

const createCertificate = `-- name: CreateCertificate :one
INSERT INTO certificates (name, slug, issuer, description, image_url, issued_at, expires_at, is_active, position, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + certificateColumns

// CreateCertificateParams holds parameters for CreateCertificate.
type CreateCertificateParams struct {
	Name        string
	Slug        string
	Issuer      sql.NullString
	Description sql.NullString
	ImageURL    sql.NullString
	IssuedAt    sql.NullTime
	ExpiresAt   sql.NullTime
	IsActive    bool
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCertificate inserts a new certificate.
func (q *Queries) CreateCertificate(ctx context.Context, arg CreateCertificateParams) (model.Certificate, error) {
	row := q.db.QueryRowContext(ctx, createCertificate,
		arg.Name,
		arg.Slug,
		arg.Issuer,
		arg.Description,
		arg.ImageURL,
		arg.IssuedAt,
		arg.ExpiresAt,
		arg.IsActive,
		arg.Position,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanCertificate(row)
}

const getCertificateByID = `-- name: GetCertificateByID :one
SELECT ` + certificateColumns + ` FROM certificates WHERE id = ?`

// GetCertificateByID fetches a certificate by ID.
func (q *Queries) GetCertificateByID(ctx context.Context, id int64) (model.Certificate, error) {
	return scanCertificate(q.db.QueryRowContext(ctx, getCertificateByID, id))
}

const getCertificateBySlug = `-- name: GetCertificateBySlug :one
SELECT ` + certificateColumns + ` FROM certificates WHERE slug = ?`

// GetCertificateBySlug fetches a certificate by slug.
func (q *Queries) GetCertificateBySlug(ctx context.Context, slug string) (model.Certificate, error) {
	return scanCertificate(q.db.QueryRowContext(ctx, getCertificateBySlug, slug))
}

const listCertificates = `-- name: ListCertificates :many
SELECT ` + certificateColumns + ` FROM certificates ORDER BY position, name`

// ListCertificates returns all certificates ordered by position.
func (q *Queries) ListCertificates(ctx context.Context) ([]model.Certificate, error) {
	return q.queryCertificates(ctx, listCertificates)
}

const listActiveCertificates = `-- name: ListActiveCertificates :many
SELECT ` + certificateColumns + ` FROM certificates WHERE is_active = 1 ORDER BY position, name`

// ListActiveCertificates returns active certificates ordered by position.
func (q *Queries) ListActiveCertificates(ctx context.Context) ([]model.Certificate, error) {
	return q.queryCertificates(ctx, listActiveCertificates)
}

const updateCertificate = `-- name: UpdateCertificate :one
UPDATE certificates
SET name = ?, slug = ?, issuer = ?, description = ?, image_url = ?, issued_at = ?, expires_at = ?, is_active = ?, position = ?, updated_at = ?
WHERE id = ?
RETURNING ` + certificateColumns

// UpdateCertificateParams holds parameters for UpdateCertificate.
type UpdateCertificateParams struct {
	ID          int64
	Name        string
	Slug        string
	Issuer      sql.NullString
	Description sql.NullString
	ImageURL    sql.NullString
	IssuedAt    sql.NullTime
	ExpiresAt   sql.NullTime
	IsActive    bool
	Position    int64
	UpdatedAt   time.Time
}

// UpdateCertificate updates an existing certificate.
func (q *Queries) UpdateCertificate(ctx context.Context, arg UpdateCertificateParams) (model.Certificate, error) {
	row := q.db.QueryRowContext(ctx, updateCertificate,
		arg.Name,
		arg.Slug,
		arg.Issuer,
		arg.Description,
		arg.ImageURL,
		arg.IssuedAt,
		arg.ExpiresAt,
		arg.IsActive,
		arg.Position,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanCertificate(row)
}

const deleteCertificate = `-- name: DeleteCertificate :exec
DELETE FROM certificates WHERE id = ?`

// DeleteCertificate removes a certificate.
func (q *Queries) DeleteCertificate(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCertificate, id)
	return err
}

func (q *Queries) queryCertificates(ctx context.Context, query string) ([]model.Certificate, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Certificate
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Slug,
			&c.Issuer,
			&c.Description,
			&c.ImageURL,
			&c.IssuedAt,
			&c.ExpiresAt,
			&c.IsActive,
			&c.Position,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func scanCertificate(row *sql.Row) (model.Certificate, error) {
	var c model.Certificate
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Issuer,
		&c.Description,
		&c.ImageURL,
		&c.IssuedAt,
		&c.ExpiresAt,
		&c.IsActive,
		&c.Position,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
