// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Category groups products in the public catalog.
type Category struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description sql.NullString `json:"description,omitempty"`
	Position    int64          `json:"position"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Product is a catalog item offered for export.
type Product struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	CategoryID  int64          `json:"category_id"`
	Description sql.NullString `json:"description,omitempty"`
	Season      sql.NullString `json:"season,omitempty"`
	Packing     sql.NullString `json:"packing,omitempty"`
	Origin      sql.NullString `json:"origin,omitempty"`
	IsActive    bool           `json:"is_active"`
	IsFeatured  bool           `json:"is_featured"`
	Position    int64          `json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProductImage is one entry of a product's ordered gallery.
type ProductImage struct {
	ID        int64          `json:"id"`
	ProductID int64          `json:"product_id"`
	URL       string         `json:"url"`
	Alt       sql.NullString `json:"alt,omitempty"`
	Position  int64          `json:"position"`
}
