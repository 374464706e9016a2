// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Page types tracked by analytics.
const (
	PageTypeHome        = "home"
	PageTypeProducts    = "products"
	PageTypeProduct     = "product"
	PageTypeCertificate = "certificates"
	PageTypeContact     = "contact"
	PageTypeOther       = "other"
)

// Device types derived from the User-Agent header.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

// PageView is a single tracked visit to a public page. Bot traffic is
// dropped before a row is written.
type PageView struct {
	ID             int64          `json:"id"`
	Path           string         `json:"path"`
	PageType       string         `json:"page_type"`
	ResourceID     sql.NullInt64  `json:"resource_id,omitempty"`
	Country        sql.NullString `json:"country,omitempty"`
	Device         string         `json:"device"`
	Browser        sql.NullString `json:"browser,omitempty"`
	Os             sql.NullString `json:"os,omitempty"`
	ReferrerDomain sql.NullString `json:"referrer_domain,omitempty"`
	VisitorHash    string         `json:"visitor_hash"`
	CreatedAt      time.Time      `json:"created_at"`
}
