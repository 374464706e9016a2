package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name, slug, description, position, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, name, slug, description, position, is_active, created_at, updated_at`

// CreateCategoryParams holds parameters for CreateCategory.
type CreateCategoryParams struct {
	Name        string
	Slug        string
	Description sql.NullString
	Position    int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCategory inserts a new category.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.Position,
		arg.IsActive,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanCategory(row)
}

const getCategoryByID = `-- name: GetCategoryByID :one
SELECT id, name, slug, description, position, is_active, created_at, updated_at
FROM categories
WHERE id = ?`

// GetCategoryByID fetches a category by ID.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategoryByID, id))
}

const getCategoryBySlug = `-- name: GetCategoryBySlug :one
SELECT id, name, slug, description, position, is_active, created_at, updated_at
FROM categories
WHERE slug = ?`

// GetCategoryBySlug fetches a category by slug.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategoryBySlug, slug))
}

const listCategories = `-- name: ListCategories :many
SELECT id, name, slug, description, position, is_active, created_at, updated_at
FROM categories
ORDER BY position, name`

// ListCategories returns all categories ordered by position.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

const listActiveCategories = `-- name: ListActiveCategories :many
SELECT id, name, slug, description, position, is_active, created_at, updated_at
FROM categories
WHERE is_active = 1
ORDER BY position, name`

// ListActiveCategories returns active categories ordered by position.
func (q *Queries) ListActiveCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, listActiveCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories
SET name = ?, slug = ?, description = ?, position = ?, is_active = ?, updated_at = ?
WHERE id = ?
RETURNING id, name, slug, description, position, is_active, created_at, updated_at`

// UpdateCategoryParams holds parameters for UpdateCategory.
type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Slug        string
	Description sql.NullString
	Position    int64
	IsActive    bool
	UpdatedAt   time.Time
}

// UpdateCategory updates an existing category.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, updateCategory,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.Position,
		arg.IsActive,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanCategory(row)
}

const deleteCategory = `-- name: DeleteCategory :exec
DELETE FROM categories WHERE id = ?`

// DeleteCategory removes a category.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCategory, id)
	return err
}

const countProductsInCategory = `-- name: CountProductsInCategory :one
SELECT COUNT(*) FROM products WHERE category_id = ?`

// CountProductsInCategory returns how many products reference a category.
func (q *Queries) CountProductsInCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countProductsInCategory, categoryID).Scan(&count)
	return count, err
}

func scanCategory(row *sql.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.Position,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func collectCategories(rows *sql.Rows) ([]model.Category, error) {
	var items []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Slug,
			&c.Description,
			&c.Position,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
