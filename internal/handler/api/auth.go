// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alrehab/agriexport-go/internal/auth"
	"github.com/alrehab/agriexport-go/internal/handler"
	"github.com/alrehab/agriexport-go/internal/middleware"
	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/service"
	"github.com/alrehab/agriexport-go/internal/store"
	"github.com/alrehab/agriexport-go/internal/util"
)

const tokenTTL = 8 * time.Hour

const minPasswordLength = 8

// LoginRequest is the POST /api/admin/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

// AdminResponse is the admin identity in auth responses.
type AdminResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login handles POST /api/admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	errs := make(map[string]string)
	if req.Email == "" {
		errs["email"] = "email is required"
	}
	if req.Password == "" {
		errs["password"] = "password is required"
	}
	if len(errs) > 0 {
		handler.WriteFieldErrors(w, errs)
		return
	}

	ip := util.ClientIP(r)
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = util.DeviceID(r)
	}

	if locked, remaining := h.protection.IsLocked(ctx, ip, deviceID); locked {
		writeLockedOut(w, remaining)
		return
	}

	user, err := h.queries.GetAdminUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.failLogin(w, r, ip, deviceID, req.Email)
			return
		}
		internalError(w, "looking up admin user", err)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		internalError(w, "verifying password", err)
		return
	}
	if !ok {
		h.failLogin(w, r, ip, deviceID, req.Email)
		return
	}

	h.protection.RecordSuccessfulLogin(ctx, ip, deviceID, req.Email)

	// Transparently upgrade hashes created with older parameters.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateAdminPassword(ctx, store.UpdateAdminPasswordParams{
				ID:           user.ID,
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
			}); err != nil {
				slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}

	if err := h.queries.UpdateAdminLastLogin(ctx, store.UpdateAdminLastLoginParams{
		ID:          user.ID,
		LastLoginAt: sql.NullTime{Time: time.Now(), Valid: true},
	}); err != nil {
		slog.Warn("updating last login failed", "user_id", user.ID, "error", err)
	}

	token, err := auth.IssueToken(user, h.jwtSecret, tokenTTL)
	if err != nil {
		internalError(w, "issuing token", err)
		return
	}

	h.setTokenCookie(w, token, tokenTTL)

	if err := service.RecordAudit(ctx, h.queries, service.AuditEntry{
		AdminID:    user.ID,
		AdminEmail: user.Email,
		Action:     model.AuditActionLogin,
		EntityType: entityAdminUser,
		EntityID:   user.ID,
		IPAddress:  ip,
	}); err != nil {
		slog.Warn("recording login audit failed", "error", err)
	}

	handler.WriteData(w, map[string]any{
		"token": token,
		"user":  adminResponse(user),
	})
}

// failLogin records a failed attempt and answers with the uniform
// invalid-credentials error plus how many tries are left.
func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, ip, deviceID, email string) {
	ctx := r.Context()
	if h.protection.RecordFailedAttempt(ctx, ip, deviceID, email) {
		_, remaining := h.protection.IsLocked(ctx, ip, deviceID)
		writeLockedOut(w, remaining)
		return
	}
	handler.WriteErrorData(w, http.StatusUnauthorized, "invalid email or password",
		map[string]any{
			"remainingAttempts": h.protection.RemainingAttempts(ctx, ip, deviceID),
		})
}

// writeLockedOut answers a locked identity with the remaining wait.
func writeLockedOut(w http.ResponseWriter, remaining time.Duration) {
	minutes := int(remaining.Minutes()) + 1
	handler.WriteErrorData(w, http.StatusTooManyRequests,
		fmt.Sprintf("too many failed login attempts, try again in %d minutes", minutes),
		map[string]any{
			"lockedOut":         true,
			"retryAfterMinutes": minutes,
		})
}

// Session handles GET /api/admin/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetAdmin(r)
	if claims == nil {
		handler.WriteUnauthorized(w, "authentication required")
		return
	}
	handler.WriteData(w, AdminResponse{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	})
}

// ChangePasswordRequest is the POST /api/admin/change-password body.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /api/admin/change-password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := middleware.GetAdmin(r)
	if claims == nil {
		handler.WriteUnauthorized(w, "authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	errs := make(map[string]string)
	if req.CurrentPassword == "" {
		errs["currentPassword"] = "current password is required"
	}
	if len(req.NewPassword) < minPasswordLength {
		errs["newPassword"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	}
	if req.NewPassword == req.CurrentPassword && req.NewPassword != "" {
		errs["newPassword"] = "new password must differ from the current password"
	}
	if len(errs) > 0 {
		handler.WriteFieldErrors(w, errs)
		return
	}

	user, err := h.queries.GetAdminUserByID(ctx, claims.UserID)
	if err != nil {
		internalError(w, "looking up admin user", err)
		return
	}

	ok, err := auth.CheckPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		internalError(w, "verifying password", err)
		return
	}
	if !ok {
		handler.WriteUnauthorized(w, "current password is incorrect")
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		internalError(w, "hashing password", err)
		return
	}

	err = h.inTx(ctx, func(qtx *store.Queries) error {
		if err := qtx.UpdateAdminPassword(ctx, store.UpdateAdminPasswordParams{
			ID:           user.ID,
			PasswordHash: newHash,
			UpdatedAt:    time.Now(),
		}); err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionUpdate, entityAdminUser, user.ID, nil, nil))
	})
	if err != nil {
		internalError(w, "updating password", err)
		return
	}

	handler.WriteOK(w)
}

// Logout handles POST /api/admin/logout by expiring the token cookie.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.setTokenCookie(w, "", -time.Hour)
	handler.WriteOK(w)
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func adminResponse(user model.AdminUser) AdminResponse {
	return AdminResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}
