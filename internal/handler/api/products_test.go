// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/store"
)

func seedProductWithDescription(t *testing.T, h *Handler, categoryID int64, name, slug, description string) model.Product {
	t.Helper()
	now := time.Now()
	product, err := h.queries.CreateProduct(context.Background(), store.CreateProductParams{
		Name:        name,
		Slug:        slug,
		CategoryID:  categoryID,
		Description: sql.NullString{String: description, Valid: true},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("creating product: %v", err)
	}
	return product
}

func TestListProducts(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	seedProduct(t, h, category.ID, "Navel Orange", "navel-orange")
	seedProduct(t, h, category.ID, "Valencia Orange", "valencia-orange")

	rec := httptest.NewRecorder()
	h.ListProducts(rec, publicRequest(http.MethodGet, "/api/products", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if env.Pagination == nil {
		t.Fatal("expected pagination")
	}
	if env.Pagination.Total != 2 || env.Pagination.Page != 1 {
		t.Errorf("pagination = %+v", env.Pagination)
	}
}

func TestListProductsPagination(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	for i := 0; i < 3; i++ {
		seedProduct(t, h, category.ID, fmt.Sprintf("Product %d", i), fmt.Sprintf("product-%d", i))
	}

	rec := httptest.NewRecorder()
	h.ListProducts(rec, publicRequest(http.MethodGet, "/api/products?page=2&limit=2", nil))

	var products []ProductResponse
	env := decodeEnvelope(t, rec)
	decodeRaw(t, env, &products)
	if len(products) != 1 {
		t.Errorf("page 2 has %d products", len(products))
	}
	if env.Pagination.Pages != 2 || env.Pagination.Total != 3 {
		t.Errorf("pagination = %+v", env.Pagination)
	}
}

func TestListProductsCategoryFilter(t *testing.T) {
	h := newTestHandler(t)
	citrus := seedCategory(t, h, "Citrus", "citrus")
	veg := seedCategory(t, h, "Vegetables", "vegetables")
	seedProduct(t, h, citrus.ID, "Navel Orange", "navel-orange")
	seedProduct(t, h, veg.ID, "Red Onion", "red-onion")

	rec := httptest.NewRecorder()
	h.ListProducts(rec, publicRequest(http.MethodGet,
		fmt.Sprintf("/api/products?category=%d", veg.ID), nil))

	var products []ProductResponse
	decodeData(t, rec, &products)
	if len(products) != 1 || products[0].Slug != "red-onion" {
		t.Fatalf("got %+v", products)
	}
}

func TestListProductsInvalidCategoryFilter(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ListProducts(rec, publicRequest(http.MethodGet, "/api/products?category=citrus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetProductByIDAndSlug(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	product := seedProduct(t, h, category.ID, "Navel Orange", "navel-orange")

	for _, ident := range []string{fmt.Sprint(product.ID), "navel-orange"} {
		rec := httptest.NewRecorder()
		h.GetProduct(rec, publicRequestWithID(http.MethodGet, "/api/products/"+ident, ident))
		if rec.Code != http.StatusOK {
			t.Fatalf("ident %q: status = %d", ident, rec.Code)
		}
		var resp ProductResponse
		decodeData(t, rec, &resp)
		if resp.ID != product.ID {
			t.Errorf("ident %q: id = %d", ident, resp.ID)
		}
	}
}

func TestGetProductRendersMarkdown(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	product := seedProductWithDescription(t, h, category.ID, "Navel Orange", "navel-orange",
		"**Sweet** seedless oranges.\n\n<script>alert(1)</script>")

	rec := httptest.NewRecorder()
	h.GetProduct(rec, publicRequestWithID(http.MethodGet, "/api/products/1", fmt.Sprint(product.ID)))

	var resp ProductResponse
	decodeData(t, rec, &resp)
	if !strings.Contains(resp.DescriptionHTML, "<strong>Sweet</strong>") {
		t.Errorf("descriptionHtml = %q", resp.DescriptionHTML)
	}
	if strings.Contains(resp.DescriptionHTML, "<script>") {
		t.Errorf("script tag survived sanitization: %q", resp.DescriptionHTML)
	}
}

func TestListProductsOmitsRenderedHTML(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	seedProductWithDescription(t, h, category.ID, "Navel Orange", "navel-orange", "**Sweet**")

	rec := httptest.NewRecorder()
	h.ListProducts(rec, publicRequest(http.MethodGet, "/api/products", nil))

	var products []ProductResponse
	decodeData(t, rec, &products)
	if len(products) != 1 {
		t.Fatalf("got %d products", len(products))
	}
	if products[0].DescriptionHTML != "" {
		t.Errorf("list response carries rendered HTML: %q", products[0].DescriptionHTML)
	}
	if products[0].Description != "**Sweet**" {
		t.Errorf("description = %q", products[0].Description)
	}
}

func TestCreateProduct(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")

	body := jsonBody(t, CreateProductRequest{
		Name:       "Navel Orange",
		Slug:       "navel-orange",
		CategoryID: category.ID,
		Season:     "December to April",
		Origin:     "Nile Delta",
	})
	rec := httptest.NewRecorder()
	h.CreateProduct(rec, adminRequest(http.MethodPost, "/api/products", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ProductResponse
	decodeData(t, rec, &resp)
	if resp.Season != "December to April" || !resp.IsActive {
		t.Errorf("created = %+v", resp)
	}

	action, entityType := lastAuditAction(t, h.db)
	if action != model.AuditActionCreate || entityType != entityProduct {
		t.Errorf("audit row = %s %s", action, entityType)
	}
}

func TestCreateProductUnknownCategory(t *testing.T) {
	h := newTestHandler(t)

	body := jsonBody(t, CreateProductRequest{Name: "X", Slug: "x", CategoryID: 999})
	rec := httptest.NewRecorder()
	h.CreateProduct(rec, adminRequest(http.MethodPost, "/api/products", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Errors["categoryId"] == "" {
		t.Errorf("errors = %v", env.Errors)
	}
}

func TestCreateProductDuplicateSlug(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	seedProduct(t, h, category.ID, "Navel Orange", "navel-orange")

	body := jsonBody(t, CreateProductRequest{Name: "Another", Slug: "navel-orange", CategoryID: category.ID})
	rec := httptest.NewRecorder()
	h.CreateProduct(rec, adminRequest(http.MethodPost, "/api/products", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpdateProduct(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	product := seedProduct(t, h, category.ID, "Navel Orange", "navel-orange")

	featured := true
	season := "January to March"
	rec := httptest.NewRecorder()
	h.UpdateProduct(rec, adminRequestWithID(http.MethodPut, "/api/products/1",
		jsonBody(t, UpdateProductRequest{IsFeatured: &featured, Season: &season}),
		fmt.Sprint(product.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ProductResponse
	decodeData(t, rec, &resp)
	if !resp.IsFeatured || resp.Season != "January to March" {
		t.Errorf("updated = %+v", resp)
	}
	if resp.Name != "Navel Orange" {
		t.Errorf("untouched field changed: name = %q", resp.Name)
	}
}

func TestUpdateProductImages(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	product := seedProduct(t, h, category.ID, "Navel Orange", "navel-orange")

	body := jsonBody(t, UpdateProductImagesRequest{Images: []ProductImageInput{
		{URL: "/uploads/originals/a/one.jpg", Alt: "Crate of oranges"},
		{URL: "/uploads/originals/b/two.jpg"},
	}})
	rec := httptest.NewRecorder()
	h.UpdateProductImages(rec, adminRequestWithID(http.MethodPut, "/api/products/1/images",
		body, fmt.Sprint(product.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ProductResponse
	decodeData(t, rec, &resp)
	if len(resp.Images) != 2 {
		t.Fatalf("got %d images", len(resp.Images))
	}
	if resp.Images[1].Position != 1 {
		t.Errorf("second image position = %d", resp.Images[1].Position)
	}

	// Replacing again removes the old gallery wholesale.
	body = jsonBody(t, UpdateProductImagesRequest{Images: []ProductImageInput{
		{URL: "/uploads/originals/c/three.jpg"},
	}})
	rec = httptest.NewRecorder()
	h.UpdateProductImages(rec, adminRequestWithID(http.MethodPut, "/api/products/1/images",
		body, fmt.Sprint(product.ID)))

	decodeData(t, rec, &resp)
	if len(resp.Images) != 1 {
		t.Errorf("got %d images after replace", len(resp.Images))
	}
}

func TestUpdateProductImagesMissingURL(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	product := seedProduct(t, h, category.ID, "Navel Orange", "navel-orange")

	body := jsonBody(t, UpdateProductImagesRequest{Images: []ProductImageInput{{Alt: "no url"}}})
	rec := httptest.NewRecorder()
	h.UpdateProductImages(rec, adminRequestWithID(http.MethodPut, "/api/products/1/images",
		body, fmt.Sprint(product.ID)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeleteProduct(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	product := seedProduct(t, h, category.ID, "Navel Orange", "navel-orange")

	rec := httptest.NewRecorder()
	h.DeleteProduct(rec, adminRequestWithID(http.MethodDelete, "/api/products/1", nil, fmt.Sprint(product.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetProduct(rec, publicRequestWithID(http.MethodGet, "/api/products/1", fmt.Sprint(product.ID)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("product still readable: status = %d", rec.Code)
	}
}

func TestMutateProductBySlugRejected(t *testing.T) {
	h := newTestHandler(t)
	category := seedCategory(t, h, "Citrus", "citrus")
	seedProduct(t, h, category.ID, "Navel Orange", "navel-orange")

	rec := httptest.NewRecorder()
	h.DeleteProduct(rec, adminRequestWithID(http.MethodDelete, "/api/products/navel-orange", nil, "navel-orange"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
