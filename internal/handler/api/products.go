// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alrehab/agriexport-go/internal/handler"
	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/service"
	"github.com/alrehab/agriexport-go/internal/store"
	"github.com/alrehab/agriexport-go/internal/util"

	"github.com/go-chi/chi/v5"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

// ProductImageResponse is one gallery image in API payloads.
type ProductImageResponse struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
	Position int64  `json:"position"`
}

// ProductResponse is a product in API payloads. DescriptionHTML is only
// populated on single-product reads.
type ProductResponse struct {
	ID              int64                  `json:"id"`
	Name            string                 `json:"name"`
	Slug            string                 `json:"slug"`
	CategoryID      int64                  `json:"categoryId"`
	Description     string                 `json:"description,omitempty"`
	DescriptionHTML string                 `json:"descriptionHtml,omitempty"`
	Season          string                 `json:"season,omitempty"`
	Packing         string                 `json:"packing,omitempty"`
	Origin          string                 `json:"origin,omitempty"`
	IsActive        bool                   `json:"isActive"`
	IsFeatured      bool                   `json:"isFeatured"`
	Position        int64                  `json:"position"`
	Images          []ProductImageResponse `json:"images"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// CreateProductRequest is the POST /api/products body.
type CreateProductRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	CategoryID  int64  `json:"categoryId"`
	Description string `json:"description,omitempty"`
	Season      string `json:"season,omitempty"`
	Packing     string `json:"packing,omitempty"`
	Origin      string `json:"origin,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
	IsFeatured  *bool  `json:"isFeatured,omitempty"`
	Position    *int64 `json:"position,omitempty"`
}

// UpdateProductRequest is the PUT /api/products/{id} body.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	CategoryID  *int64  `json:"categoryId,omitempty"`
	Description *string `json:"description,omitempty"`
	Season      *string `json:"season,omitempty"`
	Packing     *string `json:"packing,omitempty"`
	Origin      *string `json:"origin,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	IsFeatured  *bool   `json:"isFeatured,omitempty"`
	Position    *int64  `json:"position,omitempty"`
}

// ProductImageInput is one image in the PUT /api/products/{id}/images body.
type ProductImageInput struct {
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
	Position int64  `json:"position"`
}

// UpdateProductImagesRequest replaces a product's gallery.
type UpdateProductImagesRequest struct {
	Images []ProductImageInput `json:"images"`
}

// ListProducts handles GET /api/products. Public; supports category,
// active, featured filters and page/limit pagination.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := handler.ParsePageParam(r)
	limit := handler.ParseLimitParam(r, defaultProductLimit, maxProductLimit)

	params := store.ListProductsParams{
		IsActive:   handler.ParseNullBoolParam(r, "active"),
		IsFeatured: handler.ParseNullBoolParam(r, "featured"),
		Limit:      int64(limit),
		Offset:     int64((page - 1) * limit),
	}
	if category := r.URL.Query().Get("category"); category != "" {
		id, err := strconv.ParseInt(category, 10, 64)
		if err != nil {
			handler.WriteBadRequest(w, "invalid category filter")
			return
		}
		params.CategoryID = sql.NullInt64{Int64: id, Valid: true}
	}

	products, err := h.queries.ListProducts(ctx, params)
	if err != nil {
		internalError(w, "listing products", err)
		return
	}
	total, err := h.queries.CountProducts(ctx, params)
	if err != nil {
		internalError(w, "counting products", err)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		images, err := h.queries.ListProductImages(ctx, p.ID)
		if err != nil {
			internalError(w, "listing product images", err)
			return
		}
		responses = append(responses, productResponse(p, images, false, h))
	}

	handler.WriteList(w, responses, handler.NewPagination(page, limit, total))
}

// GetProduct handles GET /api/products/{id}. The identifier is tried as
// a numeric ID first and as a slug when that fails.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, ok := h.resolveProduct(w, r)
	if !ok {
		return
	}

	images, err := h.queries.ListProductImages(ctx, product.ID)
	if err != nil {
		internalError(w, "listing product images", err)
		return
	}

	handler.WriteData(w, productResponse(product, images, true, h))
}

// CreateProduct handles POST /api/products. Admin only.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	errs := make(map[string]string)
	if req.Name == "" {
		errs["name"] = "name is required"
	}
	req.Slug = normalizeSlug(req.Slug, req.Name, errs)
	if req.CategoryID <= 0 {
		errs["categoryId"] = "categoryId is required"
	}
	if len(errs) > 0 {
		handler.WriteFieldErrors(w, errs)
		return
	}

	if _, err := h.queries.GetCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteFieldErrors(w, map[string]string{"categoryId": "category not found"})
		} else {
			internalError(w, "loading category", err)
		}
		return
	}

	taken, err := slugTaken(func() (int64, error) {
		p, err := h.queries.GetProductBySlug(ctx, req.Slug)
		return p.ID, err
	}, 0)
	if err != nil {
		internalError(w, "checking product slug", err)
		return
	}
	if taken {
		handler.WriteFieldErrors(w, map[string]string{"slug": "slug already exists"})
		return
	}

	now := time.Now()
	params := store.CreateProductParams{
		Name:        req.Name,
		Slug:        req.Slug,
		CategoryID:  req.CategoryID,
		Description: util.NullStringFromValue(req.Description),
		Season:      util.NullStringFromValue(req.Season),
		Packing:     util.NullStringFromValue(req.Packing),
		Origin:      util.NullStringFromValue(req.Origin),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		params.IsFeatured = *req.IsFeatured
	}
	if req.Position != nil {
		params.Position = *req.Position
	}

	var product model.Product
	err = h.inTx(ctx, func(qtx *store.Queries) error {
		var err error
		product, err = qtx.CreateProduct(ctx, params)
		if err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionCreate, entityProduct, product.ID, nil, product))
	})
	if err != nil {
		internalError(w, "creating product", err)
		return
	}

	handler.WriteCreated(w, productResponse(product, nil, false, h))
}

// UpdateProduct handles PUT /api/products/{id}. Admin only.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireProduct(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	params := store.UpdateProductParams{
		ID:          existing.ID,
		Name:        existing.Name,
		Slug:        existing.Slug,
		CategoryID:  existing.CategoryID,
		Description: existing.Description,
		Season:      existing.Season,
		Packing:     existing.Packing,
		Origin:      existing.Origin,
		IsActive:    existing.IsActive,
		IsFeatured:  existing.IsFeatured,
		Position:    existing.Position,
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
			p, err := h.queries.GetProductBySlug(ctx, *req.Slug)
			return p.ID, err
		}, existing.ID)
		if err != nil {
			internalError(w, "checking product slug", err)
			return
		}
		if taken {
			handler.WriteFieldErrors(w, map[string]string{"slug": "slug already exists"})
			return
		}
		params.Slug = *req.Slug
	}
	if req.CategoryID != nil {
		if _, err := h.queries.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				handler.WriteFieldErrors(w, map[string]string{"categoryId": "category not found"})
			} else {
				internalError(w, "loading category", err)
			}
			return
		}
		params.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		params.Description = util.NullStringFromValue(*req.Description)
	}
	if req.Season != nil {
		params.Season = util.NullStringFromValue(*req.Season)
	}
	if req.Packing != nil {
		params.Packing = util.NullStringFromValue(*req.Packing)
	}
	if req.Origin != nil {
		params.Origin = util.NullStringFromValue(*req.Origin)
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		params.IsFeatured = *req.IsFeatured
	}
	if req.Position != nil {
		params.Position = *req.Position
	}

	var product model.Product
	err := h.inTx(ctx, func(qtx *store.Queries) error {
		var err error
		product, err = qtx.UpdateProduct(ctx, params)
		if err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionUpdate, entityProduct, product.ID, existing, product))
	})
	if err != nil {
		internalError(w, "updating product", err)
		return
	}

	images, err := h.queries.ListProductImages(ctx, product.ID)
	if err != nil {
		internalError(w, "listing product images", err)
		return
	}
	handler.WriteData(w, productResponse(product, images, false, h))
}

// UpdateProductImages handles PUT /api/products/{id}/images. Admin only.
// The gallery is replaced wholesale inside one transaction.
func (h *Handler) UpdateProductImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, ok := h.requireProduct(w, r)
	if !ok {
		return
	}

	var req UpdateProductImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}
	for i, img := range req.Images {
		if img.URL == "" {
			handler.WriteFieldErrors(w, map[string]string{
				"images": "image " + strconv.Itoa(i) + " is missing a url",
			})
			return
		}
	}

	oldImages, err := h.queries.ListProductImages(ctx, product.ID)
	if err != nil {
		internalError(w, "listing product images", err)
		return
	}

	var newImages []model.ProductImage
	err = h.inTx(ctx, func(qtx *store.Queries) error {
		if err := qtx.DeleteProductImages(ctx, product.ID); err != nil {
			return err
		}
		for i, img := range req.Images {
			position := img.Position
			if position == 0 {
				position = int64(i)
			}
			created, err := qtx.CreateProductImage(ctx, store.CreateProductImageParams{
				ProductID: product.ID,
				URL:       img.URL,
				Alt:       util.NullStringFromValue(img.Alt),
				Position:  position,
			})
			if err != nil {
				return err
			}
			newImages = append(newImages, created)
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionUpdate, entityProduct, product.ID,
				map[string]any{"images": oldImages},
				map[string]any{"images": newImages}))
	})
	if err != nil {
		internalError(w, "replacing product images", err)
		return
	}

	handler.WriteData(w, productResponse(product, newImages, false, h))
}

// DeleteProduct handles DELETE /api/products/{id}. Admin only.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, ok := h.requireProduct(w, r)
	if !ok {
		return
	}

	err := h.inTx(ctx, func(qtx *store.Queries) error {
		if err := qtx.DeleteProductImages(ctx, product.ID); err != nil {
			return err
		}
		if err := qtx.DeleteProduct(ctx, product.ID); err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionDelete, entityProduct, product.ID, product, nil))
	})
	if err != nil {
		internalError(w, "deleting product", err)
		return
	}

	handler.WriteOK(w)
}

// requireProduct fetches the product addressed by the numeric {id}
// parameter. Used by mutating endpoints, which never address by slug.
func (h *Handler) requireProduct(w http.ResponseWriter, r *http.Request) (model.Product, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		handler.WriteBadRequest(w, "invalid product ID")
		return model.Product{}, false
	}

	product, err := h.queries.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteNotFound(w, "product not found")
		} else {
			internalError(w, "loading product", err)
		}
		return model.Product{}, false
	}
	return product, true
}

// resolveProduct resolves the {id} parameter as an ID, then as a slug.
func (h *Handler) resolveProduct(w http.ResponseWriter, r *http.Request) (model.Product, bool) {
	ctx := r.Context()
	param := chi.URLParam(r, "id")

	if id, err := strconv.ParseInt(param, 10, 64); err == nil {
		product, err := h.queries.GetProductByID(ctx, id)
		if err == nil {
			return product, true
		}
		if !errors.Is(err, sql.ErrNoRows) {
			internalError(w, "loading product", err)
			return model.Product{}, false
		}
	}

	product, err := h.queries.GetProductBySlug(ctx, param)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteNotFound(w, "product not found")
		} else {
			internalError(w, "loading product", err)
		}
		return model.Product{}, false
	}
	return product, true
}

func productResponse(p model.Product, images []model.ProductImage, renderHTML bool, h *Handler) ProductResponse {
	resp := ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		CategoryID: p.CategoryID,
		IsActive:   p.IsActive,
		IsFeatured: p.IsFeatured,
		Position:   p.Position,
		Images:     make([]ProductImageResponse, 0, len(images)),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Description.Valid {
		resp.Description = p.Description.String
		if renderHTML {
			resp.DescriptionHTML = h.renderMarkdown(p.Description.String)
		}
	}
	if p.Season.Valid {
		resp.Season = p.Season.String
	}
	if p.Packing.Valid {
		resp.Packing = p.Packing.String
	}
	if p.Origin.Valid {
		resp.Origin = p.Origin.String
	}
	for _, img := range images {
		imgResp := ProductImageResponse{
			ID:       img.ID,
			URL:      img.URL,
			Position: img.Position,
		}
		if img.Alt.Valid {
			imgResp.Alt = img.Alt.String
		}
		resp.Images = append(resp.Images, imgResp)
	}
	return resp
}
