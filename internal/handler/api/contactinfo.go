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
	"github.com/alrehab/agriexport-go/internal/util"
)

// ContactInfoResponse is the contact record in API payloads.
type ContactInfoResponse struct {
	Key      string            `json:"key"`
	Email    string            `json:"email,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Whatsapp string            `json:"whatsapp,omitempty"`
	Address  string            `json:"address,omitempty"`
	MapURL   string            `json:"mapUrl,omitempty"`
	Social   map[string]string `json:"social"`
}

// UpsertContactInfoRequest is the admin POST/PUT /api/contact-info body.
type UpsertContactInfoRequest struct {
	Key      string            `json:"key,omitempty"`
	Email    string            `json:"email,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Whatsapp string            `json:"whatsapp,omitempty"`
	Address  string            `json:"address,omitempty"`
	MapURL   string            `json:"mapUrl,omitempty"`
	Social   map[string]string `json:"social,omitempty"`
}

// GetContactInfo handles the public GET /api/contact-info, returning
// the main record.
func (h *Handler) GetContactInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.queries.GetContactInfoByKey(r.Context(), model.ContactInfoKeyMain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteNotFound(w, "contact info not found")
		} else {
			internalError(w, "loading contact info", err)
		}
		return
	}
	handler.WriteData(w, contactInfoResponse(info))
}

// UpsertContactInfo handles the admin POST/PUT /api/contact-info,
// creating or replacing the record for a key.
func (h *Handler) UpsertContactInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpsertContactInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	key := req.Key
	if key == "" {
		key = model.ContactInfoKeyMain
	}

	social := "{}"
	if req.Social != nil {
		data, err := json.Marshal(req.Social)
		if err != nil {
			handler.WriteFieldErrors(w, map[string]string{"social": "social must be an object of strings"})
			return
		}
		social = string(data)
	}

	old, err := h.queries.GetContactInfoByKey(ctx, key)
	var oldData any
	switch {
	case err == nil:
		oldData = old
	case errors.Is(err, sql.ErrNoRows):
		oldData = nil
	default:
		internalError(w, "loading contact info", err)
		return
	}

	now := time.Now()
	var info model.ContactInfo
	err = h.inTx(ctx, func(qtx *store.Queries) error {
		var err error
		info, err = qtx.UpsertContactInfo(ctx, store.UpsertContactInfoParams{
			Key:       key,
			Email:     util.NullStringFromValue(req.Email),
			Phone:     util.NullStringFromValue(req.Phone),
			Whatsapp:  util.NullStringFromValue(req.Whatsapp),
			Address:   util.NullStringFromValue(req.Address),
			MapURL:    util.NullStringFromValue(req.MapURL),
			Social:    social,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		action := model.AuditActionUpdate
		if oldData == nil {
			action = model.AuditActionCreate
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, action, entityContactInfo, info.ID, oldData, info))
	})
	if err != nil {
		internalError(w, "saving contact info", err)
		return
	}

	handler.WriteData(w, contactInfoResponse(info))
}

func contactInfoResponse(info model.ContactInfo) ContactInfoResponse {
	resp := ContactInfoResponse{
		Key:    info.Key,
		Social: map[string]string{},
	}
	if info.Email.Valid {
		resp.Email = info.Email.String
	}
	if info.Phone.Valid {
		resp.Phone = info.Phone.String
	}
	if info.Whatsapp.Valid {
		resp.Whatsapp = info.Whatsapp.String
	}
	if info.Address.Valid {
		resp.Address = info.Address.String
	}
	if info.MapURL.Valid {
		resp.MapURL = info.MapURL.String
	}
	// Stored social is a JSON object; a corrupt value degrades to empty.
	_ = json.Unmarshal([]byte(info.Social), &resp.Social)
	return resp
}
