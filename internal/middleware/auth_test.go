// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alrehab/agriexport-go/internal/auth"
	"github.com/alrehab/agriexport-go/internal/model"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func issueTestToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.IssueToken(model.AdminUser{
		ID:    1,
		Email: "admin@example.com",
		Name:  "Admin",
		Role:  role,
	}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuth_NoToken(t *testing.T) {
	handler := AdminAuth(testSecret)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Success {
		t.Error("success = true in error response")
	}
}

func TestAdminAuth_CookieToken(t *testing.T) {
	var got *auth.AdminClaims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetAdmin(r)
	})
	handler := AdminAuth(testSecret)(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	req.AddCookie(&http.Cookie{Name: AdminTokenCookie, Value: issueTestToken(t, model.RoleAdmin)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil {
		t.Fatal("claims missing from context")
	}
	if got.UserID != 1 || got.Email != "admin@example.com" {
		t.Errorf("claims = %+v, want user 1 admin@example.com", got)
	}
}

func TestAdminAuth_BearerToken(t *testing.T) {
	handler := AdminAuth(testSecret)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, model.RoleEditor))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAdminAuth_InvalidToken(t *testing.T) {
	handler := AdminAuth(testSecret)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	req.AddCookie(&http.Cookie{Name: AdminTokenCookie, Value: "not-a-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAdminAuth_WrongSecret(t *testing.T) {
	otherSecret := []byte("ffffffffffffffffffffffffffffffff")
	handler := AdminAuth(otherSecret)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	req.AddCookie(&http.Cookie{Name: AdminTokenCookie, Value: issueTestToken(t, model.RoleAdmin)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAdminRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin allowed", model.RoleAdmin, http.StatusOK},
		{"editor forbidden", model.RoleEditor, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AdminAuth(testSecret)(RequireAdminRole()(okHandler()))

			req := httptest.NewRequest(http.MethodDelete, "/api/admin/products/1", nil)
			req.AddCookie(&http.Cookie{Name: AdminTokenCookie, Value: issueTestToken(t, tt.role)})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetAdminHelpers_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if GetAdmin(req) != nil {
		t.Error("GetAdmin should return nil without auth")
	}
	if GetAdminID(req) != 0 {
		t.Error("GetAdminID should return 0 without auth")
	}
	if GetAdminIDPtr(req) != nil {
		t.Error("GetAdminIDPtr should return nil without auth")
	}
	if GetAdminEmail(req) != "" {
		t.Error("GetAdminEmail should return empty without auth")
	}
}
