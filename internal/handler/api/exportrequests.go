// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/alrehab/agriexport-go/internal/handler"
	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/service"
	"github.com/alrehab/agriexport-go/internal/store"
	"github.com/alrehab/agriexport-go/internal/util"
)

const (
	defaultRequestLimit = 20
	maxRequestLimit     = 100

	maxMessageLength = 2000
)

// ExportRequestResponse is an export request in API payloads.
type ExportRequestResponse struct {
	ID              int64      `json:"id"`
	CompanyName     string     `json:"companyName,omitempty"`
	ContactName     string     `json:"contactName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	Country         string     `json:"country,omitempty"`
	ProductInterest string     `json:"productInterest,omitempty"`
	Quantity        string     `json:"quantity,omitempty"`
	Message         string     `json:"message,omitempty"`
	Source          string     `json:"source"`
	Status          string     `json:"status"`
	RespondedAt     *time.Time `json:"respondedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CreateExportRequestRequest is the public POST /api/export-requests body.
type CreateExportRequestRequest struct {
	CompanyName     string `json:"companyName,omitempty"`
	ContactName     string `json:"contactName"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Country         string `json:"country,omitempty"`
	ProductInterest string `json:"productInterest,omitempty"`
	Quantity        string `json:"quantity,omitempty"`
	Message         string `json:"message,omitempty"`
}

// UpdateExportRequestRequest is the admin PUT /api/export-requests/{id} body.
type UpdateExportRequestRequest struct {
	Status string `json:"status"`
}

// BulkUpdateExportRequestsRequest is the admin PUT /api/export-requests body.
type BulkUpdateExportRequestsRequest struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status"`
}

// CreateExportRequest handles the public POST /api/export-requests.
func (h *Handler) CreateExportRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateExportRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	if errs := validateInquiry(req.ContactName, req.Email, req.Message); len(errs) > 0 {
		handler.WriteFieldErrors(w, errs)
		return
	}

	created, err := h.createInquiry(r, req, model.ExportSourceForm)
	if err != nil {
		internalError(w, "creating export request", err)
		return
	}

	handler.WriteCreated(w, exportRequestResponse(created))
}

// ListExportRequests handles the admin GET /api/export-requests with
// status and source filters.
func (h *Handler) ListExportRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := handler.ParsePageParam(r)
	limit := handler.ParseLimitParam(r, defaultRequestLimit, maxRequestLimit)

	params := store.ListExportRequestsParams{
		Limit:  int64(limit),
		Offset: int64((page - 1) * limit),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !model.IsValidExportStatus(status) {
			handler.WriteBadRequest(w, "unknown status filter")
			return
		}
		params.Status = sql.NullString{String: status, Valid: true}
	}
	if source := r.URL.Query().Get("source"); source != "" {
		params.Source = sql.NullString{String: source, Valid: true}
	}

	requests, err := h.queries.ListExportRequests(ctx, params)
	if err != nil {
		internalError(w, "listing export requests", err)
		return
	}
	total, err := h.queries.CountExportRequests(ctx, params)
	if err != nil {
		internalError(w, "counting export requests", err)
		return
	}

	responses := make([]ExportRequestResponse, 0, len(requests))
	for _, er := range requests {
		responses = append(responses, exportRequestResponse(er))
	}
	handler.WriteList(w, responses, handler.NewPagination(page, limit, total))
}

// GetExportRequest handles the admin GET /api/export-requests/{id}.
func (h *Handler) GetExportRequest(w http.ResponseWriter, r *http.Request) {
	request, ok := h.requireExportRequest(w, r)
	if !ok {
		return
	}
	handler.WriteData(w, exportRequestResponse(request))
}

// UpdateExportRequest handles the admin PUT /api/export-requests/{id}.
// RespondedAt is stamped on the first transition into a responded
// status and never overwritten.
func (h *Handler) UpdateExportRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireExportRequest(w, r)
	if !ok {
		return
	}

	var req UpdateExportRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if !model.IsValidExportStatus(req.Status) {
		handler.WriteFieldErrors(w, map[string]string{"status": "unknown status"})
		return
	}

	var updated model.ExportRequest
	err := h.inTx(ctx, func(qtx *store.Queries) error {
		var err error
		updated, err = qtx.UpdateExportRequestStatus(ctx, statusUpdateParams(existing, req.Status))
		if err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionUpdate, entityExportRequest, updated.ID, existing, updated))
	})
	if err != nil {
		internalError(w, "updating export request", err)
		return
	}

	handler.WriteData(w, exportRequestResponse(updated))
}

// BulkUpdateExportRequests handles the admin PUT /api/export-requests,
// moving a set of requests to one status in a single transaction.
func (h *Handler) BulkUpdateExportRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BulkUpdateExportRequestsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	errs := make(map[string]string)
	if len(req.IDs) == 0 {
		errs["ids"] = "ids must not be empty"
	}
	if !model.IsValidExportStatus(req.Status) {
		errs["status"] = "unknown status"
	}
	if len(errs) > 0 {
		handler.WriteFieldErrors(w, errs)
		return
	}

	var updated []ExportRequestResponse
	err := h.inTx(ctx, func(qtx *store.Queries) error {
		for _, id := range req.IDs {
			existing, err := qtx.GetExportRequestByID(ctx, id)
			if err != nil {
				return err
			}
			changed, err := qtx.UpdateExportRequestStatus(ctx, statusUpdateParams(existing, req.Status))
			if err != nil {
				return err
			}
			if err := service.RecordAudit(ctx, qtx,
				h.auditEntry(r, model.AuditActionUpdate, entityExportRequest, changed.ID, existing, changed)); err != nil {
				return err
			}
			updated = append(updated, exportRequestResponse(changed))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteNotFound(w, "export request not found")
			return
		}
		internalError(w, "bulk updating export requests", err)
		return
	}

	handler.WriteData(w, updated)
}

// DeleteExportRequest handles the admin DELETE /api/export-requests/{id}.
func (h *Handler) DeleteExportRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	request, ok := h.requireExportRequest(w, r)
	if !ok {
		return
	}

	err := h.inTx(ctx, func(qtx *store.Queries) error {
		if err := qtx.DeleteExportRequest(ctx, request.ID); err != nil {
			return err
		}
		return service.RecordAudit(ctx, qtx,
			h.auditEntry(r, model.AuditActionDelete, entityExportRequest, request.ID, request, nil))
	})
	if err != nil {
		internalError(w, "deleting export request", err)
		return
	}

	handler.WriteOK(w)
}

// createInquiry persists an inbound inquiry from either public form.
func (h *Handler) createInquiry(r *http.Request, req CreateExportRequestRequest, source string) (model.ExportRequest, error) {
	now := time.Now()
	return h.queries.CreateExportRequest(r.Context(), store.CreateExportRequestParams{
		CompanyName:     util.NullStringFromValue(req.CompanyName),
		ContactName:     req.ContactName,
		Email:           req.Email,
		Phone:           util.NullStringFromValue(req.Phone),
		Country:         util.NullStringFromValue(req.Country),
		ProductInterest: util.NullStringFromValue(req.ProductInterest),
		Quantity:        util.NullStringFromValue(req.Quantity),
		Message:         util.NullStringFromValue(req.Message),
		Source:          source,
		Status:          model.ExportStatusNew,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

func validateInquiry(contactName, email, message string) map[string]string {
	errs := make(map[string]string)
	if contactName == "" {
		errs["contactName"] = "contact name is required"
	}
	if email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "email is not a valid address"
	}
	if len(message) > maxMessageLength {
		errs["message"] = "message must be at most 2000 characters"
	}
	return errs
}

// statusUpdateParams builds the status transition, stamping RespondedAt
// exactly once.
func statusUpdateParams(existing model.ExportRequest, status string) store.UpdateExportRequestStatusParams {
	respondedAt := existing.RespondedAt
	if !respondedAt.Valid && model.IsRespondedStatus(status) {
		respondedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	return store.UpdateExportRequestStatusParams{
		ID:          existing.ID,
		Status:      status,
		RespondedAt: respondedAt,
		UpdatedAt:   time.Now(),
	}
}

func (h *Handler) requireExportRequest(w http.ResponseWriter, r *http.Request) (model.ExportRequest, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		handler.WriteBadRequest(w, "invalid export request ID")
		return model.ExportRequest{}, false
	}

	request, err := h.queries.GetExportRequestByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			handler.WriteNotFound(w, "export request not found")
		} else {
			internalError(w, "loading export request", err)
		}
		return model.ExportRequest{}, false
	}
	return request, true
}

func exportRequestResponse(er model.ExportRequest) ExportRequestResponse {
	resp := ExportRequestResponse{
		ID:          er.ID,
		ContactName: er.ContactName,
		Email:       er.Email,
		Source:      er.Source,
		Status:      er.Status,
		CreatedAt:   er.CreatedAt,
		UpdatedAt:   er.UpdatedAt,
	}
	if er.CompanyName.Valid {
		resp.CompanyName = er.CompanyName.String
	}
	if er.Phone.Valid {
		resp.Phone = er.Phone.String
	}
	if er.Country.Valid {
		resp.Country = er.Country.String
	}
	if er.ProductInterest.Valid {
		resp.ProductInterest = er.ProductInterest.String
	}
	if er.Quantity.Valid {
		resp.Quantity = er.Quantity.String
	}
	if er.Message.Valid {
		resp.Message = er.Message.String
	}
	if er.RespondedAt.Valid {
		t := er.RespondedAt.Time
		resp.RespondedAt = &t
	}
	return resp
}
