// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alrehab/agriexport-go/internal/model"
)

func TestCreateExportRequest(t *testing.T) {
	h := newTestHandler(t)

	body := jsonBody(t, CreateExportRequestRequest{
		CompanyName:     "Nordic Foods AB",
		ContactName:     "Erik Lund",
		Email:           "erik@nordicfoods.example",
		Country:         "Sweden",
		ProductInterest: "Navel oranges",
		Quantity:        "two containers monthly",
	})
	rec := httptest.NewRecorder()
	h.CreateExportRequest(rec, publicRequest(http.MethodPost, "/api/export-requests", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ExportRequestResponse
	decodeData(t, rec, &resp)
	if resp.Status != model.ExportStatusNew {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Source != model.ExportSourceForm {
		t.Errorf("source = %q", resp.Source)
	}
	if resp.RespondedAt != nil {
		t.Error("respondedAt should start empty")
	}

	// Public submissions are not audited.
	if n := countAuditRows(t, h.db); n != 0 {
		t.Errorf("audit rows = %d", n)
	}
}

func TestCreateExportRequestValidation(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name  string
		req   CreateExportRequestRequest
		field string
	}{
		{"missing contact", CreateExportRequestRequest{Email: "a@b.example"}, "contactName"},
		{"missing email", CreateExportRequestRequest{ContactName: "Erik"}, "email"},
		{"bad email", CreateExportRequestRequest{ContactName: "Erik", Email: "not-an-address"}, "email"},
		{"long message", CreateExportRequestRequest{
			ContactName: "Erik",
			Email:       "erik@nordicfoods.example",
			Message:     strings.Repeat("x", maxMessageLength+1),
		}, "message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.CreateExportRequest(rec, publicRequest(http.MethodPost, "/api/export-requests", jsonBody(t, tt.req)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if env.Errors[tt.field] == "" {
				t.Errorf("expected error for %s, got %v", tt.field, env.Errors)
			}
		})
	}
}

func TestListExportRequestsStatusFilter(t *testing.T) {
	h := newTestHandler(t)
	first := seedExportRequest(t, h, "Erik Lund", "erik@nordicfoods.example")
	seedExportRequest(t, h, "Mia Chen", "mia@pacificfoods.example")

	rec := httptest.NewRecorder()
	h.UpdateExportRequest(rec, adminRequestWithID(http.MethodPut, "/api/export-requests/1",
		jsonBody(t, UpdateExportRequestRequest{Status: model.ExportStatusContacted}),
		fmt.Sprint(first.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("updating: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ListExportRequests(rec, adminRequest(http.MethodGet,
		"/api/export-requests?status="+model.ExportStatusNew, nil))

	var requests []ExportRequestResponse
	decodeData(t, rec, &requests)
	if len(requests) != 1 || requests[0].ContactName != "Mia Chen" {
		t.Fatalf("got %+v", requests)
	}
}

func TestListExportRequestsUnknownStatus(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ListExportRequests(rec, adminRequest(http.MethodGet, "/api/export-requests?status=URGENT", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpdateExportRequestStampsRespondedAt(t *testing.T) {
	h := newTestHandler(t)
	request := seedExportRequest(t, h, "Erik Lund", "erik@nordicfoods.example")

	// IN_PROGRESS is not a responded status.
	rec := httptest.NewRecorder()
	h.UpdateExportRequest(rec, adminRequestWithID(http.MethodPut, "/api/export-requests/1",
		jsonBody(t, UpdateExportRequestRequest{Status: model.ExportStatusInProgress}),
		fmt.Sprint(request.ID)))

	var resp ExportRequestResponse
	decodeData(t, rec, &resp)
	if resp.RespondedAt != nil {
		t.Error("respondedAt stamped on IN_PROGRESS")
	}

	rec = httptest.NewRecorder()
	h.UpdateExportRequest(rec, adminRequestWithID(http.MethodPut, "/api/export-requests/1",
		jsonBody(t, UpdateExportRequestRequest{Status: model.ExportStatusContacted}),
		fmt.Sprint(request.ID)))

	decodeData(t, rec, &resp)
	if resp.RespondedAt == nil {
		t.Fatal("respondedAt not stamped on CONTACTED")
	}
	stamped := *resp.RespondedAt

	// A later responded status keeps the original stamp.
	rec = httptest.NewRecorder()
	h.UpdateExportRequest(rec, adminRequestWithID(http.MethodPut, "/api/export-requests/1",
		jsonBody(t, UpdateExportRequestRequest{Status: model.ExportStatusCompleted}),
		fmt.Sprint(request.ID)))

	decodeData(t, rec, &resp)
	if resp.RespondedAt == nil || !resp.RespondedAt.Equal(stamped) {
		t.Errorf("respondedAt changed: %v -> %v", stamped, resp.RespondedAt)
	}

	action, entityType := lastAuditAction(t, h.db)
	if action != model.AuditActionUpdate || entityType != entityExportRequest {
		t.Errorf("audit row = %s %s", action, entityType)
	}
}

func TestUpdateExportRequestUnknownStatus(t *testing.T) {
	h := newTestHandler(t)
	request := seedExportRequest(t, h, "Erik Lund", "erik@nordicfoods.example")

	rec := httptest.NewRecorder()
	h.UpdateExportRequest(rec, adminRequestWithID(http.MethodPut, "/api/export-requests/1",
		jsonBody(t, UpdateExportRequestRequest{Status: "URGENT"}),
		fmt.Sprint(request.ID)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBulkUpdateExportRequests(t *testing.T) {
	h := newTestHandler(t)
	first := seedExportRequest(t, h, "Erik Lund", "erik@nordicfoods.example")
	second := seedExportRequest(t, h, "Mia Chen", "mia@pacificfoods.example")

	body := jsonBody(t, BulkUpdateExportRequestsRequest{
		IDs:    []int64{first.ID, second.ID},
		Status: model.ExportStatusQuoted,
	})
	rec := httptest.NewRecorder()
	h.BulkUpdateExportRequests(rec, adminRequest(http.MethodPut, "/api/export-requests", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var updated []ExportRequestResponse
	decodeData(t, rec, &updated)
	if len(updated) != 2 {
		t.Fatalf("got %d updated requests", len(updated))
	}
	for _, resp := range updated {
		if resp.Status != model.ExportStatusQuoted {
			t.Errorf("request %d status = %q", resp.ID, resp.Status)
		}
		if resp.RespondedAt == nil {
			t.Errorf("request %d missing respondedAt", resp.ID)
		}
	}

	// One audit row per touched request.
	if n := countAuditRows(t, h.db); n != 2 {
		t.Errorf("audit rows = %d", n)
	}
}

func TestBulkUpdateExportRequestsUnknownID(t *testing.T) {
	h := newTestHandler(t)
	request := seedExportRequest(t, h, "Erik Lund", "erik@nordicfoods.example")

	body := jsonBody(t, BulkUpdateExportRequestsRequest{
		IDs:    []int64{request.ID, 999},
		Status: model.ExportStatusContacted,
	})
	rec := httptest.NewRecorder()
	h.BulkUpdateExportRequests(rec, adminRequest(http.MethodPut, "/api/export-requests", body))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	// The whole batch rolls back, including its audit rows.
	if n := countAuditRows(t, h.db); n != 0 {
		t.Errorf("audit rows = %d", n)
	}

	rec = httptest.NewRecorder()
	h.GetExportRequest(rec, adminRequestWithID(http.MethodGet, "/api/export-requests/1", nil, fmt.Sprint(request.ID)))
	var resp ExportRequestResponse
	decodeData(t, rec, &resp)
	if resp.Status != model.ExportStatusNew {
		t.Errorf("status = %q after rolled-back bulk update", resp.Status)
	}
}

func TestDeleteExportRequest(t *testing.T) {
	h := newTestHandler(t)
	request := seedExportRequest(t, h, "Erik Lund", "erik@nordicfoods.example")

	rec := httptest.NewRecorder()
	h.DeleteExportRequest(rec, adminRequestWithID(http.MethodDelete, "/api/export-requests/1", nil, fmt.Sprint(request.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetExportRequest(rec, adminRequestWithID(http.MethodGet, "/api/export-requests/1", nil, fmt.Sprint(request.ID)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("request still readable: status = %d", rec.Code)
	}
}
