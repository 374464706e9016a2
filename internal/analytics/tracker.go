// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics records and aggregates anonymized page views for the
// public site. Visitors are identified by a salted daily hash, never by
// raw IP address.
package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/alrehab/agriexport-go/internal/geoip"
	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/store"
	"github.com/alrehab/agriexport-go/internal/util"
)

// timeNow is a variable so it can be mocked in tests.
var timeNow = time.Now

// Visit carries the request attributes needed to record a page view.
type Visit struct {
	Path       string
	ResourceID int64
	IP         string
	UserAgent  string
	Referrer   string
}

// Tracker writes page views to the store. The hashing salt is generated
// per process, so visitor hashes do not survive restarts.
type Tracker struct {
	queries *store.Queries
	geo     *geoip.Lookup
	salt    string
}

// NewTracker creates a Tracker. geo may be nil when no GeoIP database
// is configured.
func NewTracker(db *sql.DB, geo *geoip.Lookup) *Tracker {
	return &Tracker{
		queries: store.New(db),
		geo:     geo,
		salt:    generateSalt(),
	}
}

// Record stores a single page view. Bot traffic is dropped silently.
func (t *Tracker) Record(ctx context.Context, v Visit) error {
	ua := useragent.Parse(v.UserAgent)
	if ua.Bot {
		return nil
	}

	params := store.CreatePageViewParams{
		Path:           v.Path,
		PageType:       ClassifyPath(v.Path),
		Device:         deviceType(ua),
		Browser:        nullString(ua.Name),
		Os:             nullString(ua.OS),
		ReferrerDomain: nullString(ReferrerDomain(v.Referrer)),
		VisitorHash:    t.visitorHash(v.IP, v.UserAgent),
		CreatedAt:      timeNow().UTC(),
	}
	if v.ResourceID > 0 {
		params.ResourceID = util.NullInt64FromValue(v.ResourceID)
	}
	if t.geo != nil && t.geo.IsEnabled() {
		params.Country = nullString(t.geo.LookupCountry(v.IP))
	}

	return t.queries.CreatePageView(ctx, params)
}

// ClassifyPath maps a public site path to a page type bucket.
func ClassifyPath(path string) string {
	switch {
	case path == "/" || path == "":
		return model.PageTypeHome
	case strings.HasPrefix(path, "/products/"):
		return model.PageTypeProduct
	case path == "/products":
		return model.PageTypeProducts
	case path == "/certificates" || strings.HasPrefix(path, "/certificates/"):
		return model.PageTypeCertificate
	case path == "/contact":
		return model.PageTypeContact
	default:
		return model.PageTypeOther
	}
}

// ReferrerDomain extracts the bare host from a referrer URL.
func ReferrerDomain(referrer string) string {
	if referrer == "" {
		return ""
	}
	parsed, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	host := parsed.Host
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}

// visitorHash fingerprints a visitor from anonymized IP, user agent and
// the current date. Hashes rotate daily so visitors cannot be tracked
// across days.
func (t *Tracker) visitorHash(ip, userAgent string) string {
	anonIP := anonymizeIP(ip)
	date := timeNow().Format("2006-01-02")

	hasher := sha256.New()
	hasher.Write([]byte(anonIP + userAgent + date + t.salt))
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

// anonymizeIP masks the IP address before hashing. IPv4 loses the last
// octet, IPv6 the last 80 bits.
func anonymizeIP(ip string) string {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return ""
	}

	if ipv4 := parsedIP.To4(); ipv4 != nil {
		ipv4[3] = 0
		return ipv4.String()
	}

	ipv6 := parsedIP.To16()
	if ipv6 == nil {
		return ""
	}
	for i := 6; i < 16; i++ {
		ipv6[i] = 0
	}
	return ipv6.String()
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile:
		return model.DeviceMobile
	case ua.Tablet:
		return model.DeviceTablet
	case ua.Desktop:
		return model.DeviceDesktop
	default:
		return model.DeviceUnknown
	}
}

func generateSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
