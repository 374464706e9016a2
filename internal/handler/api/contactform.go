// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/alrehab/agriexport-go/internal/handler"
	"github.com/alrehab/agriexport-go/internal/model"
)

// ContactFormRequest is the public POST /api/contact-form body.
type ContactFormRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

// ContactForm handles the public POST /api/contact-form. Submissions
// land in the export request inbox with the contact-form source so the
// admin panel has a single inquiry queue.
func (h *Handler) ContactForm(w http.ResponseWriter, r *http.Request) {
	var req ContactFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.WriteBadRequest(w, "invalid JSON body")
		return
	}

	errs := validateInquiry(req.Name, req.Email, req.Message)
	if _, ok := errs["contactName"]; ok {
		// This form's field is "name", so the error has to land there
		// for the client to highlight the right input.
		delete(errs, "contactName")
		errs["name"] = "name is required"
	}
	if req.Message == "" {
		errs["message"] = "message is required"
	}
	if len(errs) > 0 {
		handler.WriteFieldErrors(w, errs)
		return
	}

	created, err := h.createInquiry(r, CreateExportRequestRequest{
		ContactName: req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
	}, model.ExportSourceContact)
	if err != nil {
		internalError(w, "creating contact form request", err)
		return
	}

	handler.WriteCreated(w, exportRequestResponse(created))
}
