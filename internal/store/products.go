package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
)

const productColumns = `id, name, slug, category_id, description, season, packing, origin, is_active, is_featured, position, created_at, updated_at`

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (name, slug, category_id, description, season, packing, origin, is_active, is_featured, position, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + productColumns

// CreateProductParams holds parameters for CreateProduct.
type CreateProductParams struct {
	Name        string
	Slug        string
	CategoryID  int64
	Description sql.NullString
	Season      sql.NullString
	Packing     sql.NullString
	Origin      sql.NullString
	IsActive    bool
	IsFeatured  bool
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateProduct inserts a new product.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (model.Product, error) {
	row := q.db.QueryRowContext(ctx, createProduct,
		arg.Name,
		arg.Slug,
		arg.CategoryID,
		arg.Description,
		arg.Season,
		arg.Packing,
		arg.Origin,
		arg.IsActive,
		arg.IsFeatured,
		arg.Position,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanProduct(row)
}

const getProductByID = `-- name: GetProductByID :one
SELECT ` + productColumns + ` FROM products WHERE id = ?`

// GetProductByID fetches a product by ID.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (model.Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx, getProductByID, id))
}

const getProductBySlug = `-- name: GetProductBySlug :one
SELECT ` + productColumns + ` FROM products WHERE slug = ?`

// GetProductBySlug fetches a product by slug.
func (q *Queries) GetProductBySlug(ctx context.Context, slug string) (model.Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx, getProductBySlug, slug))
}

// ListProductsParams holds filters for ListProducts and CountProducts.
// Null filter fields are not applied.
type ListProductsParams struct {
	CategoryID sql.NullInt64
	IsActive   sql.NullBool
	IsFeatured sql.NullBool
	Limit      int64
	Offset     int64
}

func productFilter(arg ListProductsParams) (string, []interface{}) {
	var where []string
	var args []interface{}
	if arg.CategoryID.Valid {
		where = append(where, "category_id = ?")
		args = append(args, arg.CategoryID.Int64)
	}
	if arg.IsActive.Valid {
		where = append(where, "is_active = ?")
		args = append(args, arg.IsActive.Bool)
	}
	if arg.IsFeatured.Valid {
		where = append(where, "is_featured = ?")
		args = append(args, arg.IsFeatured.Bool)
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// ListProducts returns products matching the filters, ordered by position.
func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]model.Product, error) {
	where, args := productFilter(arg)
	query := "SELECT " + productColumns + " FROM products" + where +
		" ORDER BY position, name LIMIT ? OFFSET ?"
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.CategoryID,
			&p.Description,
			&p.Season,
			&p.Packing,
			&p.Origin,
			&p.IsActive,
			&p.IsFeatured,
			&p.Position,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CountProducts returns the number of products matching the filters.
func (q *Queries) CountProducts(ctx context.Context, arg ListProductsParams) (int64, error) {
	where, args := productFilter(arg)
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&count)
	return count, err
}

const updateProduct = `-- name: UpdateProduct :one
UPDATE products
SET name = ?, slug = ?, category_id = ?, description = ?, season = ?, packing = ?, origin = ?, is_active = ?, is_featured = ?, position = ?, updated_at = ?
WHERE id = ?
RETURNING ` + productColumns

// UpdateProductParams holds parameters for UpdateProduct.
type UpdateProductParams struct {
	ID          int64
	Name        string
	Slug        string
	CategoryID  int64
	Description sql.NullString
	Season      sql.NullString
	Packing     sql.NullString
	Origin      sql.NullString
	IsActive    bool
	IsFeatured  bool
	Position    int64
	UpdatedAt   time.Time
}

// UpdateProduct updates an existing product.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (model.Product, error) {
	row := q.db.QueryRowContext(ctx, updateProduct,
		arg.Name,
		arg.Slug,
		arg.CategoryID,
		arg.Description,
		arg.Season,
		arg.Packing,
		arg.Origin,
		arg.IsActive,
		arg.IsFeatured,
		arg.Position,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanProduct(row)
}

const deleteProduct = `-- name: DeleteProduct :exec
DELETE FROM products WHERE id = ?`

// DeleteProduct removes a product. Its images cascade.
func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteProduct, id)
	return err
}

const createProductImage = `-- name: CreateProductImage :one
INSERT INTO product_images (product_id, url, alt, position)
VALUES (?, ?, ?, ?)
RETURNING id, product_id, url, alt, position`

// CreateProductImageParams holds parameters for CreateProductImage.
type CreateProductImageParams struct {
	ProductID int64
	URL       string
	Alt       sql.NullString
	Position  int64
}

// CreateProductImage adds one image to a product's gallery.
func (q *Queries) CreateProductImage(ctx context.Context, arg CreateProductImageParams) (model.ProductImage, error) {
	row := q.db.QueryRowContext(ctx, createProductImage,
		arg.ProductID,
		arg.URL,
		arg.Alt,
		arg.Position,
	)
	var img model.ProductImage
	err := row.Scan(&img.ID, &img.ProductID, &img.URL, &img.Alt, &img.Position)
	return img, err
}

const listProductImages = `-- name: ListProductImages :many
SELECT id, product_id, url, alt, position
FROM product_images
WHERE product_id = ?
ORDER BY position`

// ListProductImages returns a product's gallery in display order.
func (q *Queries) ListProductImages(ctx context.Context, productID int64) ([]model.ProductImage, error) {
	rows, err := q.db.QueryContext(ctx, listProductImages, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ProductImage
	for rows.Next() {
		var img model.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Alt, &img.Position); err != nil {
			return nil, err
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

const deleteProductImages = `-- name: DeleteProductImages :exec
DELETE FROM product_images WHERE product_id = ?`

// DeleteProductImages removes all images of a product. Used together with
// CreateProductImage inside a transaction to replace the gallery.
func (q *Queries) DeleteProductImages(ctx context.Context, productID int64) error {
	_, err := q.db.ExecContext(ctx, deleteProductImages, productID)
	return err
}

func scanProduct(row *sql.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.CategoryID,
		&p.Description,
		&p.Season,
		&p.Packing,
		&p.Origin,
		&p.IsActive,
		&p.IsFeatured,
		&p.Position,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
