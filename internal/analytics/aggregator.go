// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alrehab/agriexport-go/internal/cache"
	"github.com/alrehab/agriexport-go/internal/geoip"
	"github.com/alrehab/agriexport-go/internal/store"
)

const (
	snapshotKey = "analytics:snapshot"
	snapshotTTL = time.Minute

	// trailingMonths is the reporting window for all aggregates.
	trailingMonths = 6

	topProductLimit = 10
)

// LabelCount is a single label/count pair in an aggregate series.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// ProductCount reports views of a single product page.
type ProductCount struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Count     int64  `json:"count"`
}

// CountryCount reports views from a single visitor country.
type CountryCount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Snapshot is the aggregated analytics payload served to the admin
// dashboard. All series cover the trailing six calendar months.
type Snapshot struct {
	TotalViews     int64          `json:"totalViews"`
	UniqueVisitors int64          `json:"uniqueVisitors"`
	ByPage         []LabelCount   `json:"byPage"`
	ByProduct      []ProductCount `json:"byProduct"`
	ByCountry      []CountryCount `json:"byCountry"`
	ByDevice       []LabelCount   `json:"byDevice"`
	ByBrowser      []LabelCount   `json:"byBrowser"`
	Monthly        []LabelCount   `json:"monthly"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}

// Aggregator computes analytics snapshots from raw page views. Results
// are cached because the endpoint is public and the queries are the
// most expensive reads in the process.
type Aggregator struct {
	queries   *store.Queries
	snapshots *cache.TypedCache[Snapshot]
}

// NewAggregator creates an Aggregator backed by the given cache.
func NewAggregator(db *sql.DB, c cache.Cacher) *Aggregator {
	return &Aggregator{
		queries:   store.New(db),
		snapshots: cache.NewTypedCache[Snapshot](c, snapshotTTL),
	}
}

// Snapshot returns the current aggregate payload, rebuilding it at most
// once per cache TTL.
func (a *Aggregator) Snapshot(ctx context.Context) (*Snapshot, error) {
	return a.snapshots.GetOrSet(ctx, snapshotKey, func() (*Snapshot, error) {
		return a.build(ctx)
	})
}

// Invalidate drops the cached snapshot so the next read rebuilds it.
func (a *Aggregator) Invalidate(ctx context.Context) {
	_ = a.snapshots.Delete(ctx, snapshotKey)
}

func (a *Aggregator) build(ctx context.Context) (*Snapshot, error) {
	now := timeNow()
	since := monthStart(now).AddDate(0, -(trailingMonths - 1), 0)

	total, err := a.queries.CountPageViewsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	uniques, err := a.queries.CountUniqueVisitorsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	byPage, err := a.queries.CountViewsByPageType(ctx, since)
	if err != nil {
		return nil, err
	}
	byDevice, err := a.queries.CountViewsByDevice(ctx, since)
	if err != nil {
		return nil, err
	}
	byBrowser, err := a.queries.CountViewsByBrowser(ctx, since)
	if err != nil {
		return nil, err
	}
	byCountry, err := a.countryCounts(ctx, since)
	if err != nil {
		return nil, err
	}
	byProduct, err := a.productCounts(ctx, since)
	if err != nil {
		return nil, err
	}
	monthly, err := a.monthlyCounts(ctx, since, now)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		TotalViews:     total,
		UniqueVisitors: uniques,
		ByPage:         labelCounts(byPage),
		ByProduct:      byProduct,
		ByCountry:      byCountry,
		ByDevice:       labelCounts(byDevice),
		ByBrowser:      labelCounts(byBrowser),
		Monthly:        monthly,
		GeneratedAt:    now.UTC(),
	}, nil
}

func (a *Aggregator) countryCounts(ctx context.Context, since time.Time) ([]CountryCount, error) {
	rows, err := a.queries.CountViewsByCountry(ctx, since)
	if err != nil {
		return nil, err
	}

	counts := make([]CountryCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, CountryCount{
			Code:  r.Label,
			Name:  geoip.CountryName(r.Label),
			Count: r.Count,
		})
	}
	return counts, nil
}

// productCounts resolves the top viewed products to their names.
// Products deleted since the views were recorded are skipped.
func (a *Aggregator) productCounts(ctx context.Context, since time.Time) ([]ProductCount, error) {
	rows, err := a.queries.CountViewsByProduct(ctx, since, topProductLimit)
	if err != nil {
		return nil, err
	}

	counts := make([]ProductCount, 0, len(rows))
	for _, r := range rows {
		product, err := a.queries.GetProductByID(ctx, r.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		counts = append(counts, ProductCount{
			ProductID: r.ProductID,
			Name:      product.Name,
			Slug:      product.Slug,
			Count:     r.Count,
		})
	}
	return counts, nil
}

// monthlyCounts buckets views per calendar month, zero-filling months
// with no traffic so the series always has six entries.
func (a *Aggregator) monthlyCounts(ctx context.Context, since, now time.Time) ([]LabelCount, error) {
	rows, err := a.queries.CountViewsByMonth(ctx, since)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]int64, len(rows))
	for _, r := range rows {
		byMonth[r.Label] = r.Count
	}

	series := make([]LabelCount, 0, trailingMonths)
	for i := trailingMonths - 1; i >= 0; i-- {
		month := monthStart(now).AddDate(0, -i, 0).Format("2006-01")
		series = append(series, LabelCount{Label: month, Count: byMonth[month]})
	}
	return series, nil
}

func labelCounts(rows []store.ViewCountRow) []LabelCount {
	counts := make([]LabelCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, LabelCount{Label: r.Label, Count: r.Count})
	}
	return counts
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
