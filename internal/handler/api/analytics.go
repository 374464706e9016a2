// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/alrehab/agriexport-go/internal/analytics"
	"github.com/alrehab/agriexport-go/internal/handler"
	"github.com/alrehab/agriexport-go/internal/util"
)

// TrackRequest is the body of a page view beacon.
type TrackRequest struct {
	Path       string `json:"path"`
	ResourceID int64  `json:"resourceId"`
}

// GetAnalytics returns the aggregated analytics snapshot.
// GET /api/analytics
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.aggregator.Snapshot(r.Context())
	if err != nil {
		internalError(w, "building analytics snapshot", err)
		return
	}
	handler.WriteData(w, snapshot)
}

// Track records a page view from the public site.
// POST /api/analytics/track
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid request body")
		return
	}
	if req.Path == "" {
		handler.WriteBadRequest(w, "path is required")
		return
	}

	err := h.tracker.Record(r.Context(), analytics.Visit{
		Path:       req.Path,
		ResourceID: req.ResourceID,
		IP:         util.ClientIP(r),
		UserAgent:  r.UserAgent(),
		Referrer:   r.Referer(),
	})
	if err != nil {
		internalError(w, "recording page view", err)
		return
	}
	handler.WriteOK(w)
}
