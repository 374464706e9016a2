package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const mediaColumns = `id, uuid, filename, mime_type, size, width, height, url, thumbnail, uploaded_by, created_at`

const createMedia = `-- name: CreateMedia :one
INSERT INTO media (uuid, filename, mime_type, size, width, height, url, thumbnail, uploaded_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + mediaColumns

// CreateMediaParams holds parameters for CreateMedia.
type CreateMediaParams struct {
	UUID       string
	Filename   string
	MimeType   string
	Size       int64
	Width      sql.NullInt64
	Height     sql.NullInt64
	URL        string
	Thumbnail  sql.NullString
	UploadedBy int64
	CreatedAt  time.Time
}

// CreateMedia records an uploaded file.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (model.Media, error) {
	row := q.db.QueryRowContext(ctx, createMedia,
		arg.UUID,
		arg.Filename,
		arg.MimeType,
		arg.Size,
		arg.Width,
		arg.Height,
		arg.URL,
		arg.Thumbnail,
		arg.UploadedBy,
		arg.CreatedAt,
	)
	return scanMedia(row)
}

const getMediaByUUID = `-- name: GetMediaByUUID :one
SELECT ` + mediaColumns + ` FROM media WHERE uuid = ?`

// GetMediaByUUID fetches a media record by its UUID.
func (q *Queries) GetMediaByUUID(ctx context.Context, uuid string) (model.Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx, getMediaByUUID, uuid))
}

const listMedia = `-- name: ListMedia :many
SELECT ` + mediaColumns + ` FROM media ORDER BY created_at DESC LIMIT ? OFFSET ?`

// ListMediaParams holds pagination for ListMedia.
type ListMediaParams struct {
	Limit  int64
	Offset int64
}

// ListMedia returns uploaded files, newest first.
func (q *Queries) ListMedia(ctx context.Context, arg ListMediaParams) ([]model.Media, error) {
	rows, err := q.db.QueryContext(ctx, listMedia, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Media
	for rows.Next() {
		var m model.Media
		if err := rows.Scan(
			&m.ID,
			&m.UUID,
			&m.Filename,
			&m.MimeType,
			&m.Size,
			&m.Width,
			&m.Height,
			&m.URL,
			&m.Thumbnail,
			&m.UploadedBy,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const deleteMedia = `-- name: DeleteMedia :exec
DELETE FROM media WHERE id = ?`

// DeleteMedia removes a media record.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteMedia, id)
	return err
}

func scanMedia(row *sql.Row) (model.Media, error) {
	var m model.Media
	err := row.Scan(
		&m.ID,
		&m.UUID,
		&m.Filename,
		&m.MimeType,
		&m.Size,
		&m.Width,
		&m.Height,
		&m.URL,
		&m.Thumbnail,
		&m.UploadedBy,
		&m.CreatedAt,
	)
	return m, err
}
