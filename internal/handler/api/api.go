// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api implements the REST handlers for the public site and the
// admin panel.
package api

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/alrehab/agriexport-go/internal/analytics"
	"github.com/alrehab/agriexport-go/internal/cache"
	"github.com/alrehab/agriexport-go/internal/geoip"
	"github.com/alrehab/agriexport-go/internal/handler"
	"github.com/alrehab/agriexport-go/internal/middleware"
	"github.com/alrehab/agriexport-go/internal/service"
	"github.com/alrehab/agriexport-go/internal/store"
	"github.com/alrehab/agriexport-go/internal/util"
)

// Audited entity types.
const (
	entityCategory      = "category"
	entityProduct       = "product"
	entityCertificate   = "certificate"
	entityExportRequest = "export_request"
	entityContactInfo   = "contact_info"
	entityMedia         = "media"
	entityAdminUser     = "admin_user"
)

// Config carries the dependencies the API handlers need.
type Config struct {
	DB            *sql.DB
	JWTSecret     []byte
	SecureCookies bool
	UploadDir     string
	Geo           *geoip.Lookup
	Cache         cache.Cacher
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db            *sql.DB
	queries       *store.Queries
	uploads       *service.UploadService
	protection    *service.LoginProtection
	tracker       *analytics.Tracker
	aggregator    *analytics.Aggregator
	jwtSecret     []byte
	secureCookies bool
	markdown      goldmark.Markdown
	sanitizer     *bluemonday.Policy
}

// NewHandler creates the API handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		db:            cfg.DB,
		queries:       store.New(cfg.DB),
		uploads:       service.NewUploadService(cfg.DB, cfg.UploadDir),
		protection:    service.NewLoginProtection(cfg.DB),
		tracker:       analytics.NewTracker(cfg.DB, cfg.Geo),
		aggregator:    analytics.NewAggregator(cfg.DB, cfg.Cache),
		jwtSecret:     cfg.JWTSecret,
		secureCookies: cfg.SecureCookies,
		markdown:      goldmark.New(),
		sanitizer:     bluemonday.UGCPolicy(),
	}
}

// renderMarkdown converts a markdown description to sanitized HTML.
func (h *Handler) renderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return h.sanitizer.Sanitize(buf.String())
}

// inTx runs fn with transactional queries, committing on success.
// Mutating handlers use it so the entity write and its audit row share
// one transaction.
func (h *Handler) inTx(ctx context.Context, fn func(qtx *store.Queries) error) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(h.queries.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// auditEntry builds the audit record for the authenticated admin making
// this request.
func (h *Handler) auditEntry(r *http.Request, action, entityType string, entityID int64, oldData, newData any) service.AuditEntry {
	return service.AuditEntry{
		AdminID:    middleware.GetAdminID(r),
		AdminEmail: middleware.GetAdminEmail(r),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldData:    oldData,
		NewData:    newData,
		IPAddress:  util.ClientIP(r),
	}
}

// internalError logs the failure and writes the generic 500 envelope.
func internalError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	handler.WriteInternalError(w)
}

// slugTaken reports whether a slug is already used, looked up through
// fetch. excludeID skips the entity being updated.
func slugTaken(fetch func() (int64, error), excludeID int64) (bool, error) {
	id, err := fetch()
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return id != excludeID, nil
}

// validateSlug checks presence and format, filling errs on failure.
func validateSlug(slug string, errs map[string]string) {
	if slug == "" {
		errs["slug"] = "slug is required"
	} else if !util.IsValidSlug(slug) {
		errs["slug"] = "slug may only contain lowercase letters, digits and dashes"
	}
}

// normalizeSlug derives a slug from the display name when the request
// omits one, then validates the result.
func normalizeSlug(slug, name string, errs map[string]string) string {
	if slug == "" {
		slug = util.Slugify(name)
	}
	validateSlug(slug, errs)
	return slug
}
