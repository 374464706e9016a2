// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ParseIDParam parses the {id} URL parameter as a positive integer.
func ParseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ParsePageParam parses the "page" query parameter, defaulting to 1.
func ParsePageParam(r *http.Request) int {
	return ParseIntParam(r, "page", 1, 1, 0)
}

// ParseLimitParam parses the "limit" query parameter, clamped to
// [1, maxLimit].
func ParseLimitParam(r *http.Request, defaultLimit, maxLimit int) int {
	return ParseIntParam(r, "limit", defaultLimit, 1, maxLimit)
}

// ParseIntParam parses an integer query parameter. Missing, invalid or
// out-of-range values yield defaultVal. A maxVal of 0 means unbounded.
func ParseIntParam(r *http.Request, param string, defaultVal, minVal, maxVal int) int {
	str := r.URL.Query().Get(param)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	if val < minVal {
		return defaultVal
	}
	if maxVal > 0 && val > maxVal {
		return defaultVal
	}
	return val
}

// ParseNullBoolParam parses an optional boolean query parameter.
// An absent or unparseable value returns an invalid NullBool.
func ParseNullBoolParam(r *http.Request, param string) sql.NullBool {
	str := r.URL.Query().Get(param)
	if str == "" {
		return sql.NullBool{}
	}
	val, err := strconv.ParseBool(str)
	if err != nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: val, Valid: true}
}
