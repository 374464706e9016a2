// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// rate limiting, and request context handling.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alrehab/agriexport-go/internal/auth"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyAdmin is the context key for the authenticated admin's claims.
const ContextKeyAdmin ContextKey = "admin"

// AdminTokenCookie is the cookie holding the admin JWT.
const AdminTokenCookie = "admin-token"

// errorResponse mirrors the API's response envelope for errors produced
// before a request reaches its handler.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeAuthError writes a JSON error in the standard envelope.
func writeAuthError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{Success: false, Error: message})
}

// extractToken pulls the admin JWT from the request: the admin-token
// cookie first, then an Authorization bearer header for non-browser
// clients.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(AdminTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// AdminAuth creates middleware that requires a valid admin token.
// The verified claims are added to the request context.
func AdminAuth(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := auth.VerifyToken(token, jwtSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdmin, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdminRole creates middleware that requires the admin role.
// Editors get 403. Must be used after AdminAuth.
func RequireAdminRole() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetAdmin(r)
			if claims == nil {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !claims.IsAdmin() {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"admin_id", claims.UserID,
					"role", claims.Role,
				)
				writeAuthError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAdmin retrieves the authenticated admin's claims from the request context.
// Returns nil if the request is unauthenticated.
func GetAdmin(r *http.Request) *auth.AdminClaims {
	claims, ok := r.Context().Value(ContextKeyAdmin).(*auth.AdminClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetAdminID returns the authenticated admin's ID, or 0 if not found.
// Safe to use in logging where a zero value is acceptable.
func GetAdminID(r *http.Request) int64 {
	if claims := GetAdmin(r); claims != nil {
		return claims.UserID
	}
	return 0
}

// GetAdminIDPtr returns a pointer to the authenticated admin's ID, or nil.
// Useful for optional user ID parameters in event logging.
func GetAdminIDPtr(r *http.Request) *int64 {
	if claims := GetAdmin(r); claims != nil {
		id := claims.UserID
		return &id
	}
	return nil
}

// GetAdminEmail returns the authenticated admin's email, or empty string.
func GetAdminEmail(r *http.Request) string {
	if claims := GetAdmin(r); claims != nil {
		return claims.Email
	}
	return ""
}
