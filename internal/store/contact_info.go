package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const contactInfoColumns = `id, key, email, phone, whatsapp, address, map_url, social, created_at, updated_at`

const getContactInfoByKey = `-- name: GetContactInfoByKey :one
SELECT ` + contactInfoColumns + ` FROM contact_info WHERE key = ?`

// GetContactInfoByKey fetches the contact record for a key.
func (q *Queries) GetContactInfoByKey(ctx context.Context, key string) (model.ContactInfo, error) {
	return scanContactInfo(q.db.QueryRowContext(ctx, getContactInfoByKey, key))
}

const upsertContactInfo = `-- name: UpsertContactInfo :one
INSERT INTO contact_info (key, email, phone, whatsapp, address, map_url, social, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    email = excluded.email,
    phone = excluded.phone,
    whatsapp = excluded.whatsapp,
    address = excluded.address,
    map_url = excluded.map_url,
    social = excluded.social,
    updated_at = excluded.updated_at
RETURNING ` + contactInfoColumns

// UpsertContactInfoParams holds parameters for UpsertContactInfo.
type UpsertContactInfoParams struct {
	Key       string
	Email     sql.NullString
	Phone     sql.NullString
	Whatsapp  sql.NullString
	Address   sql.NullString
	MapURL    sql.NullString
	Social    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertContactInfo creates or replaces the contact record for a key.
func (q *Queries) UpsertContactInfo(ctx context.Context, arg UpsertContactInfoParams) (model.ContactInfo, error) {
	row := q.db.QueryRowContext(ctx, upsertContactInfo,
		arg.Key,
		arg.Email,
		arg.Phone,
		arg.Whatsapp,
		arg.Address,
		arg.MapURL,
		arg.Social,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanContactInfo(row)
}

func scanContactInfo(row *sql.Row) (model.ContactInfo, error) {
	var ci model.ContactInfo
	err := row.Scan(
		&ci.ID,
		&ci.Key,
		&ci.Email,
		&ci.Phone,
		&ci.Whatsapp,
		&ci.Address,
		&ci.MapURL,
		&ci.Social,
		&ci.CreatedAt,
		&ci.UpdatedAt,
	)
	return ci, err
}
