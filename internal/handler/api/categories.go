// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alrehab/agriexport-go/internal/handler"
	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/service"
	"github.com/alrehab/agriexport-go/internal/store"
)

// CategoryResponse is a category in API payloads.
type CategoryResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	Position     int64     `json:"position"`
	IsActive     bool      `json:"isActive"`
	ProductCount int64     `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateCategoryRequest is the POST /api/categories body.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Position    *int64 `json:"position,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// UpdateCategoryRequest is the PUT /api/categories/{id} body.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    *int64  `json:"position,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// ListCategories handles GET /api/categories. Public; pass active=true
// to see only active categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		categories []model.Category
		err        error
	)
	if active := handler.ParseNullBoolParam(r, "active"); active.Valid && active.Bool {
		categories, err = h.queries.ListActiveCategories(ctx)
	} else {
		categories, err = h.queries.ListCategories(ctx)
	}
	if err != nil {
		internalError(w, "listing categories", err)
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		count, err := h.queries.CountProductsInCategory(ctx, c.ID)
		if err != nil {
			count = 0
		}
		responses = append(responses, categoryResponse(c, count))
	}

	handler.WriteData(w, responses)
}

// GetCategory handles GET /api/categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := h.requireCategory(w, r)
	if !ok {
		return
	}

	count, err := h.queries.CountProductsInCategory(r.Context(), category.ID)
	if err != nil {
		count = 0
	}
	handler.WriteData(w, categoryResponse(category, count))
}

// CreateCategory handles POST /api/categories. Admin only.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	errs := make(map[string]string)
	if req.Name == "" {
		errs["name"] = "name is required"
	}
	req.Slug = normalizeSlug(req.Slug, req.Name, errs)
	if len(errs) > 0 {
		handler.WriteFieldErrors(w, errs)
		return
	}

	taken, err := slugTaken(func() (int64, error) {
		c, err := h.queries.GetCategoryBySlug(ctx, req.Slug)
		return c.ID, err
	}, 0)
	if err != nil {
		internalError(w, "checking category slug", err)
		return
	}
	if taken {
		handler.WriteFieldErrors(w, map[string]string{"slug": "slug already exists"})
		return
	}

	now := time.Now()
	params := store.CreateCategoryParams{
		Name:      req.Name,
		Slug:      req.Slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != "" {
		params.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.Position != nil {
		params.Position = *req.Position
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}

	var category model.Category
	err = h.inTx(ctx, func(qtx *store.Queries) error {
		var err error
		category, err = qtx.CreateCategory(ctx, params)
		if err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionCreate, entityCategory, category.ID, nil, category))
	})
	if err != nil {
		internalError(w, "creating category", err)
		return
	}

	handler.WriteCreated(w, categoryResponse(category, 0))
}

// UpdateCategory handles PUT /api/categories/{id}. Admin only.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireCategory(w, r)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	params := store.UpdateCategoryParams{
		ID:          existing.ID,
		Name:        existing.Name,
		Slug:        existing.Slug,
		Description: existing.Description,
		Position:    existing.Position,
		IsActive:    existing.IsActive,
		UpdatedAt:   time.Now(),
	}

	if req.Name != nil && *req.Name != "" {
		params.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != existing.Slug {
		errs := make(map[string]string)
		validateSlug(*req.Slug, errs)
		if len(errs) > 0 {
			handler.WriteFieldErrors(w, errs)
			return
		}
		taken, err := slugTaken(func() (int64, error) {
			c, err := h.queries.GetCategoryBySlug(ctx, *req.Slug)
			return c.ID, err
		}, existing.ID)
		if err != nil {
			internalError(w, "checking category slug", err)
			return
		}
		if taken {
			handler.WriteFieldErrors(w, map[string]string{"slug": "slug already exists"})
			return
		}
		params.Slug = *req.Slug
	}
	if req.Description != nil {
		params.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Position != nil {
		params.Position = *req.Position
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}

	var category model.Category
	err := h.inTx(ctx, func(qtx *store.Queries) error {
		var err error
		category, err = qtx.UpdateCategory(ctx, params)
		if err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionUpdate, entityCategory, category.ID, existing, category))
	})
	if err != nil {
		internalError(w, "updating category", err)
		return
	}

	count, err := h.queries.CountProductsInCategory(ctx, category.ID)
	if err != nil {
		count = 0
	}
	handler.WriteData(w, categoryResponse(category, count))
}

// DeleteCategory handles DELETE /api/categories/{id}. Admin only.
// A category that still owns products cannot be deleted.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, ok := h.requireCategory(w, r)
	if !ok {
		return
	}

	count, err := h.queries.CountProductsInCategory(ctx, category.ID)
	if err != nil {
		internalError(w, "counting category products", err)
		return
	}
	if count > 0 {
		handler.WriteBadRequest(w, "cannot delete a category that still has products")
		return
	}

	err = h.inTx(ctx, func(qtx *store.Queries) error {
		if err := qtx.DeleteCategory(ctx, category.ID); err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionDelete, entityCategory, category.ID, category, nil))
	})
	if err != nil {
		internalError(w, "deleting category", err)
		return
	}

	handler.WriteOK(w)
}

func (h *Handler) requireCategory(w http.ResponseWriter, r *http.Request) (model.Category, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		handler.WriteBadRequest(w, "invalid category ID")
		return model.Category{}, false
	}

	category, err := h.queries.GetCategoryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteNotFound(w, "category not found")
		} else {
			internalError(w, "loading category", err)
		}
		return model.Category{}, false
	}
	return category, true
}

func categoryResponse(c model.Category, productCount int64) CategoryResponse {
	resp := CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Position:     c.Position,
		IsActive:     c.IsActive,
		ProductCount: productCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.Description.Valid {
		resp.Description = c.Description.String
	}
	return resp
}
