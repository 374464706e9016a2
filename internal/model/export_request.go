// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Export request statuses.
const (
	ExportStatusNew        = "NEW"
	ExportStatusInProgress = "IN_PROGRESS"
	ExportStatusContacted  = "CONTACTED"
	ExportStatusQuoted     = "QUOTED"
	ExportStatusCompleted  = "COMPLETED"
	ExportStatusCancelled  = "CANCELLED"
)

// Export request sources.
const (
	ExportSourceForm    = "export-form"
	ExportSourceContact = "contact-form"
)

// ExportStatuses lists all valid statuses in workflow order.
var ExportStatuses = []string{
	ExportStatusNew,
	ExportStatusInProgress,
	ExportStatusContacted,
	ExportStatusQuoted,
	ExportStatusCompleted,
	ExportStatusCancelled,
}

// IsValidExportStatus reports whether s is a known export request status.
func IsValidExportStatus(s string) bool {
	for _, v := range ExportStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsRespondedStatus reports whether a status counts as having responded to
// the customer. RespondedAt is stamped on the first transition into one of
// these states and never overwritten.
func IsRespondedStatus(s string) bool {
	return s == ExportStatusContacted || s == ExportStatusQuoted || s == ExportStatusCompleted
}

// ExportRequest is an inbound business inquiry.
type ExportRequest struct {
	ID              int64          `json:"id"`
	CompanyName     sql.NullString `json:"company_name,omitempty"`
	ContactName     string         `json:"contact_name"`
	Email           string         `json:"email"`
	Phone           sql.NullString `json:"phone,omitempty"`
	Country         sql.NullString `json:"country,omitempty"`
	ProductInterest sql.NullString `json:"product_interest,omitempty"`
	Quantity        sql.NullString `json:"quantity,omitempty"`
	Message         sql.NullString `json:"message,omitempty"`
	Source          string         `json:"source"`
	Status          string         `json:"status"`
	RespondedAt     sql.NullTime   `json:"responded_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
