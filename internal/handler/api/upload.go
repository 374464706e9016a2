// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alrehab/agriexport-go/internal/handler"
	"github.com/alrehab/agriexport-go/internal/middleware"
	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/service"
)

// MediaResponse is an uploaded file in API payloads.
type MediaResponse struct {
	UUID      string `json:"uuid"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mimeType"`
	Size      int64  `json:"size"`
	Width     int64  `json:"width,omitempty"`
	Height    int64  `json:"height,omitempty"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Upload handles the admin POST /api/upload. Multipart body with the
// file in the "file" field; images only, 5MB cap.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+1024)
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		handler.WriteBadRequest(w, "file exceeds the 5MB upload limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handler.WriteBadRequest(w, "multipart body must carry a \"file\" field")
		return
	}
	defer file.Close()

	media, err := h.uploads.Upload(ctx, file, header, middleware.GetAdminID(r))
	if err != nil {
		if errors.Is(err, service.ErrUploadTooLarge) || errors.Is(err, service.ErrUnsupportedType) {
			handler.WriteBadRequest(w, err.Error())
			return
		}
		internalError(w, "storing upload", err)
		return
	}

	if err := service.RecordAudit(ctx, h.queries,
		h.auditEntry(r, model.AuditActionCreate, entityMedia, media.ID, nil, media)); err != nil {
		internalError(w, "recording upload audit", err)
		return
	}

	handler.WriteCreated(w, mediaResponse(*media))
}

// DeleteUpload handles the admin DELETE /api/upload/{uuid}, removing
// the media record and its files on disk.
func (h *Handler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	mediaUUID := chi.URLParam(r, "uuid")
	if mediaUUID == "" {
		handler.WriteBadRequest(w, "uuid is required")
		return
	}

	media, err := h.queries.GetMediaByUUID(ctx, mediaUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteNotFound(w, "upload not found")
			return
		}
		internalError(w, "loading media", err)
		return
	}

	if err := h.uploads.Delete(ctx, mediaUUID); err != nil {
		internalError(w, "deleting upload", err)
		return
	}

	if err := service.RecordAudit(ctx, h.queries,
		h.auditEntry(r, model.AuditActionDelete, entityMedia, media.ID, media, nil)); err != nil {
		internalError(w, "recording delete audit", err)
		return
	}

	handler.WriteOK(w)
}

func mediaResponse(m model.Media) MediaResponse {
	resp := MediaResponse{
		UUID:     m.UUID,
		Filename: m.Filename,
		MimeType: m.MimeType,
		Size:     m.Size,
		URL:      m.URL,
	}
	if m.Width.Valid {
		resp.Width = m.Width.Int64
	}
	if m.Height.Valid {
		resp.Height = m.Height.Int64
	}
	if m.Thumbnail.Valid {
		resp.Thumbnail = m.Thumbnail.String
	}
	return resp
}
