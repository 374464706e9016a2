// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alrehab/agriexport-go/internal/auth"
	"github.com/alrehab/agriexport-go/internal/cache"
	"github.com/alrehab/agriexport-go/internal/handler"
	"github.com/alrehab/agriexport-go/internal/middleware"
	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/store"
)

var testJWTSecret = []byte("test-secret-not-for-production")

const testAdminPassword = "correct-horse-battery"

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	f, err := os.CreateTemp("", "agriexport-api-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	h := NewHandler(Config{
		DB:        db,
		JWTSecret: testJWTSecret,
		UploadDir: t.TempDir(),
		Cache:     cache.NewSimpleMemoryCache(time.Minute),
	})

	// Seed the admin row matching the claims built by newRequest
	// (UserID=1), so audited mutations satisfy the audit_logs.admin_id
	// foreign key.
	seedAdmin(t, h, "admin@alrehab.example", model.RoleAdmin)

	return h
}

// testEnvelope mirrors the JSON envelope for decoding in assertions.
type testEnvelope struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Error      string              `json:"error"`
	Errors     map[string]string   `json:"errors"`
	Pagination *handler.Pagination `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	decodeRaw(t, decodeEnvelope(t, rec), dst)
}

func decodeRaw(t *testing.T, env testEnvelope, dst any) {
	t.Helper()
	if !env.Success {
		t.Fatalf("response not successful: %s", env.Error)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
}

// decodeErrorData decodes the data payload of a failure envelope, such
// as the lockout state on a 429 login response.
func decodeErrorData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatal("expected a failure envelope")
	}
	if len(env.Data) == 0 {
		t.Fatal("failure envelope carries no data")
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshalling body: %v", err)
	}
	return bytes.NewReader(data)
}

// newRequest builds a request with optional chi URL params and, when
// asAdmin is true, an authenticated admin in the context.
func newRequest(method, target string, body io.Reader, asAdmin bool, params map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, body)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	if asAdmin {
		claims := &auth.AdminClaims{
			UserID: 1,
			Email:  "admin@alrehab.example",
			Name:   "Test Admin",
			Role:   model.RoleAdmin,
		}
		r = r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyAdmin, claims))
	}
	return r
}

func adminRequest(method, target string, body io.Reader) *http.Request {
	return newRequest(method, target, body, true, nil)
}

func adminRequestWithID(method, target string, body io.Reader, id string) *http.Request {
	return newRequest(method, target, body, true, map[string]string{"id": id})
}

func publicRequest(method, target string, body io.Reader) *http.Request {
	return newRequest(method, target, body, false, nil)
}

func publicRequestWithID(method, target string, id string) *http.Request {
	return newRequest(method, target, nil, false, map[string]string{"id": id})
}

func seedAdmin(t *testing.T, h *Handler, email, role string) model.AdminUser {
	t.Helper()
	// newTestHandler already seeds the canonical admin; reuse that row
	// so repeat seeding does not trip the unique email constraint.
	if existing, err := h.queries.GetAdminUserByEmail(context.Background(), email); err == nil {
		return existing
	}
	hash, err := auth.HashPassword(testAdminPassword)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	now := time.Now()
	user, err := h.queries.CreateAdminUser(context.Background(), store.CreateAdminUserParams{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test Admin",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("creating admin user: %v", err)
	}
	return user
}

func seedCategory(t *testing.T, h *Handler, name, slug string) model.Category {
	t.Helper()
	now := time.Now()
	category, err := h.queries.CreateCategory(context.Background(), store.CreateCategoryParams{
		Name:      name,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("creating category: %v", err)
	}
	return category
}

func seedProduct(t *testing.T, h *Handler, categoryID int64, name, slug string) model.Product {
	t.Helper()
	now := time.Now()
	product, err := h.queries.CreateProduct(context.Background(), store.CreateProductParams{
		Name:       name,
		Slug:       slug,
		CategoryID: categoryID,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("creating product: %v", err)
	}
	return product
}

func seedCertificate(t *testing.T, h *Handler, name, slug string) model.Certificate {
	t.Helper()
	now := time.Now()
	cert, err := h.queries.CreateCertificate(context.Background(), store.CreateCertificateParams{
		Name:      name,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}
	return cert
}

func seedExportRequest(t *testing.T, h *Handler, contactName, email string) model.ExportRequest {
	t.Helper()
	now := time.Now()
	req, err := h.queries.CreateExportRequest(context.Background(), store.CreateExportRequestParams{
		ContactName: contactName,
		Email:       email,
		Source:      model.ExportSourceForm,
		Status:      model.ExportStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("creating export request: %v", err)
	}
	return req
}

func countAuditRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM audit_logs").Scan(&n); err != nil {
		t.Fatalf("counting audit rows: %v", err)
	}
	return n
}

func lastAuditAction(t *testing.T, db *sql.DB) (action, entityType string) {
	t.Helper()
	err := db.QueryRow("SELECT action, entity_type FROM audit_logs ORDER BY id DESC LIMIT 1").
		Scan(&action, &entityType)
	if err != nil {
		t.Fatalf("reading audit row: %v", err)
	}
	return action, entityType
}
