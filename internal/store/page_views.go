package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const createPageView = `-- name: CreatePageView :exec
INSERT INTO page_views (path, page_type, resource_id, country, device, browser, os, referrer_domain, visitor_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreatePageViewParams holds parameters for CreatePageView.
type CreatePageViewParams struct {
	Path           string
	PageType       string
	ResourceID     sql.NullInt64
	Country        sql.NullString
	Device         string
	Browser        sql.NullString
	Os             sql.NullString
	ReferrerDomain sql.NullString
	VisitorHash    string
	CreatedAt      time.Time
}

// CreatePageView records a tracked page view.
func (q *Queries) CreatePageView(ctx context.Context, arg CreatePageViewParams) error {
	_, err := q.db.ExecContext(ctx, createPageView,
		arg.Path,
		arg.PageType,
		arg.ResourceID,
		arg.Country,
		arg.Device,
		arg.Browser,
		arg.Os,
		arg.ReferrerDomain,
		arg.VisitorHash,
		arg.CreatedAt,
	)
	return err
}

const countPageViewsSince = `-- name: CountPageViewsSince :one
SELECT COUNT(*) FROM page_views WHERE created_at >= ?`

// CountPageViewsSince counts views recorded at or after the given time.
func (q *Queries) CountPageViewsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPageViewsSince, since).Scan(&count)
	return count, err
}

const countUniqueVisitorsSince = `-- name: CountUniqueVisitorsSince :one
SELECT COUNT(DISTINCT visitor_hash) FROM page_views WHERE created_at >= ?`

// CountUniqueVisitorsSince counts distinct visitor hashes since the given time.
func (q *Queries) CountUniqueVisitorsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUniqueVisitorsSince, since).Scan(&count)
	return count, err
}

// ViewCountRow is a generic label/count aggregation result.
type ViewCountRow struct {
	Label string
	Count int64
}

const countViewsByPageType = `-- name: CountViewsByPageType :many
SELECT page_type, COUNT(*) AS cnt
FROM page_views
WHERE created_at >= ?
GROUP BY page_type
ORDER BY cnt DESC`

// CountViewsByPageType aggregates views per page type since the given time.
func (q *Queries) CountViewsByPageType(ctx context.Context, since time.Time) ([]ViewCountRow, error) {
	return q.queryViewCounts(ctx, countViewsByPageType, since)
}

const countViewsByCountry = `-- name: CountViewsByCountry :many
SELECT COALESCE(country, ''), COUNT(*) AS cnt
FROM page_views
WHERE created_at >= ? AND country IS NOT NULL
GROUP BY country
ORDER BY cnt DESC
LIMIT 20`

// CountViewsByCountry aggregates views per visitor country.
func (q *Queries) CountViewsByCountry(ctx context.Context, since time.Time) ([]ViewCountRow, error) {
	return q.queryViewCounts(ctx, countViewsByCountry, since)
}

const countViewsByDevice = `-- name: CountViewsByDevice :many
SELECT device, COUNT(*) AS cnt
FROM page_views
WHERE created_at >= ?
GROUP BY device
ORDER BY cnt DESC`

// CountViewsByDevice aggregates views per device type.
func (q *Queries) CountViewsByDevice(ctx context.Context, since time.Time) ([]ViewCountRow, error) {
	return q.queryViewCounts(ctx, countViewsByDevice, since)
}

const countViewsByBrowser = `-- name: CountViewsByBrowser :many
SELECT COALESCE(browser, ''), COUNT(*) AS cnt
FROM page_views
WHERE created_at >= ? AND browser IS NOT NULL
GROUP BY browser
ORDER BY cnt DESC
LIMIT 10`

// CountViewsByBrowser aggregates views per browser.
func (q *Queries) CountViewsByBrowser(ctx context.Context, since time.Time) ([]ViewCountRow, error) {
	return q.queryViewCounts(ctx, countViewsByBrowser, since)
}

// ProductViewRow pairs a product ID with its view count.
type ProductViewRow struct {
	ProductID int64
	Count     int64
}

const countViewsByProduct = `-- name: CountViewsByProduct :many
SELECT resource_id, COUNT(*) AS cnt
FROM page_views
WHERE created_at >= ? AND page_type = ? AND resource_id IS NOT NULL
GROUP BY resource_id
ORDER BY cnt DESC
LIMIT ?`

// CountViewsByProduct aggregates product page views per product.
func (q *Queries) CountViewsByProduct(ctx context.Context, since time.Time, limit int64) ([]ProductViewRow, error) {
	rows, err := q.db.QueryContext(ctx, countViewsByProduct, since, model.PageTypeProduct, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ProductViewRow
	for rows.Next() {
		var r ProductViewRow
		if err := rows.Scan(&r.ProductID, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countViewsByMonth = `-- name: CountViewsByMonth :many
SELECT strftime('%Y-%m', created_at), COUNT(*) AS cnt
FROM page_views
WHERE created_at >= ?
GROUP BY 1
ORDER BY 1`

// CountViewsByMonth aggregates views into calendar-month buckets.
func (q *Queries) CountViewsByMonth(ctx context.Context, since time.Time) ([]ViewCountRow, error) {
	return q.queryViewCounts(ctx, countViewsByMonth, since)
}

const deletePageViewsBefore = `-- name: DeletePageViewsBefore :execrows
DELETE FROM page_views WHERE created_at < ?`

// DeletePageViewsBefore prunes views older than the cutoff and returns
// how many rows were removed.
func (q *Queries) DeletePageViewsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePageViewsBefore, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) queryViewCounts(ctx context.Context, query string, since time.Time) ([]ViewCountRow, error) {
	rows, err := q.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ViewCountRow
	for rows.Next() {
		var r ViewCountRow
		if err := rows.Scan(&r.Label, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
