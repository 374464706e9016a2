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

// certDateLayout is the wire format for certificate dates.
const certDateLayout = "2006-01-02"

// CertificateResponse is a certificate in API payloads. ExpiryStatus is
// derived at read time.
type CertificateResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Issuer          string    `json:"issuer,omitempty"`
	Description     string    `json:"description,omitempty"`
	DescriptionHTML string    `json:"descriptionHtml,omitempty"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	IssuedAt        string    `json:"issuedAt,omitempty"`
	ExpiresAt       string    `json:"expiresAt,omitempty"`
	ExpiryStatus    string    `json:"expiryStatus"`
	IsActive        bool      `json:"isActive"`
	Position        int64     `json:"position"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateCertificateRequest is the POST /api/certificates body. Date
// fields accept an empty string as "no date".
type CreateCertificateRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Issuer      string `json:"issuer,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	IssuedAt    string `json:"issuedAt,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
	Position    *int64 `json:"position,omitempty"`
}

// UpdateCertificateRequest is the PUT /api/certificates/{id} body.
type UpdateCertificateRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Issuer      *string `json:"issuer,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	IssuedAt    *string `json:"issuedAt,omitempty"`
	ExpiresAt   *string `json:"expiresAt,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	Position    *int64  `json:"position,omitempty"`
}

// ListCertificates handles GET /api/certificates. Public; pass
// active=true to see only active certificates.
func (h *Handler) ListCertificates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		certificates []model.Certificate
		err          error
	)
	if active := handler.ParseNullBoolParam(r, "active"); active.Valid && active.Bool {
		certificates, err = h.queries.ListActiveCertificates(ctx)
	} else {
		certificates, err = h.queries.ListCertificates(ctx)
	}
	if err != nil {
		internalError(w, "listing certificates", err)
		return
	}

	now := time.Now()
	responses := make([]CertificateResponse, 0, len(certificates))
	for _, c := range certificates {
		responses = append(responses, certificateResponse(c, now, false, h))
	}
	handler.WriteData(w, responses)
}

// GetCertificate handles GET /api/certificates/{id}. The identifier is
// tried as a numeric ID first and as a slug when that fails.
func (h *Handler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	certificate, ok := h.resolveCertificate(w, r)
	if !ok {
		return
	}
	handler.WriteData(w, certificateResponse(certificate, time.Now(), true, h))
}

// CreateCertificate handles POST /api/certificates. Admin only.
func (h *Handler) CreateCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	errs := make(map[string]string)
	if req.Name == "" {
		errs["name"] = "name is required"
	}
	req.Slug = normalizeSlug(req.Slug, req.Name, errs)
	issuedAt, err := parseCertDate(req.IssuedAt)
	if err != nil {
		errs["issuedAt"] = "date must be formatted YYYY-MM-DD"
	}
	expiresAt, err := parseCertDate(req.ExpiresAt)
	if err != nil {
		errs["expiresAt"] = "date must be formatted YYYY-MM-DD"
	}
	if len(errs) > 0 {
		handler.WriteFieldErrors(w, errs)
		return
	}

	taken, err := slugTaken(func() (int64, error) {
		c, err := h.queries.GetCertificateBySlug(ctx, req.Slug)
		return c.ID, err
	}, 0)
	if err != nil {
		internalError(w, "checking certificate slug", err)
		return
	}
	if taken {
		handler.WriteFieldErrors(w, map[string]string{"slug": "slug already exists"})
		return
	}

	now := time.Now()
	params := store.CreateCertificateParams{
		Name:        req.Name,
		Slug:        req.Slug,
		Issuer:      util.NullStringFromValue(req.Issuer),
		Description: util.NullStringFromValue(req.Description),
		ImageURL:    util.NullStringFromValue(req.ImageURL),
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}
	if req.Position != nil {
		params.Position = *req.Position
	}

	var certificate model.Certificate
	err = h.inTx(ctx, func(qtx *store.Queries) error {
		var err error
		certificate, err = qtx.CreateCertificate(ctx, params)
		if err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionCreate, entityCertificate, certificate.ID, nil, certificate))
	})
	if err != nil {
		internalError(w, "creating certificate", err)
		return
	}

	handler.WriteCreated(w, certificateResponse(certificate, now, false, h))
}

// UpdateCertificate handles PUT /api/certificates/{id}. Admin only.
func (h *Handler) UpdateCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireCertificate(w, r)
	if !ok {
		return
	}

	var req UpdateCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	params := store.UpdateCertificateParams{
		ID:          existing.ID,
		Name:        existing.Name,
		Slug:        existing.Slug,
		Issuer:      existing.Issuer,
		Description: existing.Description,
		ImageURL:    existing.ImageURL,
		IssuedAt:    existing.IssuedAt,
		ExpiresAt:   existing.ExpiresAt,
		IsActive:    existing.IsActive,
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
			c, err := h.queries.GetCertificateBySlug(ctx, *req.Slug)
			return c.ID, err
		}, existing.ID)
		if err != nil {
			internalError(w, "checking certificate slug", err)
			return
		}
		if taken {
			handler.WriteFieldErrors(w, map[string]string{"slug": "slug already exists"})
			return
		}
		params.Slug = *req.Slug
	}
	if req.Issuer != nil {
		params.Issuer = util.NullStringFromValue(*req.Issuer)
	}
	if req.Description != nil {
		params.Description = util.NullStringFromValue(*req.Description)
	}
	if req.ImageURL != nil {
		params.ImageURL = util.NullStringFromValue(*req.ImageURL)
	}
	if req.IssuedAt != nil {
		issuedAt, err := parseCertDate(*req.IssuedAt)
		if err != nil {
			handler.WriteFieldErrors(w, map[string]string{"issuedAt": "date must be formatted YYYY-MM-DD"})
			return
		}
		params.IssuedAt = issuedAt
	}
	if req.ExpiresAt != nil {
		expiresAt, err := parseCertDate(*req.ExpiresAt)
		if err != nil {
			handler.WriteFieldErrors(w, map[string]string{"expiresAt": "date must be formatted YYYY-MM-DD"})
			return
		}
		params.ExpiresAt = expiresAt
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}
	if req.Position != nil {
		params.Position = *req.Position
	}

	var certificate model.Certificate
	err := h.inTx(ctx, func(qtx *store.Queries) error {
		var err error
		certificate, err = qtx.UpdateCertificate(ctx, params)
		if err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionUpdate, entityCertificate, certificate.ID, existing, certificate))
	})
	if err != nil {
		internalError(w, "updating certificate", err)
		return
	}

	handler.WriteData(w, certificateResponse(certificate, time.Now(), false, h))
}

// DeleteCertificate handles DELETE /api/certificates/{id}. Admin only.
func (h *Handler) DeleteCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	certificate, ok := h.requireCertificate(w, r)
	if !ok {
		return
	}

	err := h.inTx(ctx, func(qtx *store.Queries) error {
		if err := qtx.DeleteCertificate(ctx, certificate.ID); err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionDelete, entityCertificate, certificate.ID, certificate, nil))
	})
	if err != nil {
		internalError(w, "deleting certificate", err)
		return
	}

	handler.WriteOK(w)
}

func (h *Handler) requireCertificate(w http.ResponseWriter, r *http.Request) (model.Certificate, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		handler.WriteBadRequest(w, "invalid certificate ID")
		return model.Certificate{}, false
	}

	certificate, err := h.queries.GetCertificateByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteNotFound(w, "certificate not found")
		} else {
			internalError(w, "loading certificate", err)
		}
		return model.Certificate{}, false
	}
	return certificate, true
}

func (h *Handler) resolveCertificate(w http.ResponseWriter, r *http.Request) (model.Certificate, bool) {
	ctx := r.Context()
	param := chi.URLParam(r, "id")

	if id, err := strconv.ParseInt(param, 10, 64); err == nil {
		certificate, err := h.queries.GetCertificateByID(ctx, id)
		if err == nil {
			return certificate, true
		}
		if !errors.Is(err, sql.ErrNoRows) {
			internalError(w, "loading certificate", err)
			return model.Certificate{}, false
		}
	}

	certificate, err := h.queries.GetCertificateBySlug(ctx, param)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteNotFound(w, "certificate not found")
		} else {
			internalError(w, "loading certificate", err)
		}
		return model.Certificate{}, false
	}
	return certificate, true
}

// parseCertDate parses a YYYY-MM-DD wire date. Empty means "no date".
func parseCertDate(s string) (sql.NullTime, error) {
	if s == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(certDateLayout, s)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

func certificateResponse(c model.Certificate, now time.Time, renderHTML bool, h *Handler) CertificateResponse {
	resp := CertificateResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		ExpiryStatus: c.ExpiryStatus(now),
		IsActive:     c.IsActive,
		Position:     c.Position,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.Issuer.Valid {
		resp.Issuer = c.Issuer.String
	}
	if c.Description.Valid {
		resp.Description = c.Description.String
		if renderHTML {
			resp.DescriptionHTML = h.renderMarkdown(c.Description.String)
		}
	}
	if c.ImageURL.Valid {
		resp.ImageURL = c.ImageURL.String
	}
	if c.IssuedAt.Valid {
		resp.IssuedAt = c.IssuedAt.Time.Format(certDateLayout)
	}
	if c.ExpiresAt.Valid {
		resp.ExpiresAt = c.ExpiresAt.Time.Format(certDateLayout)
	}
	return resp
}
