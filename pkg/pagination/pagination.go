// Copyright (c) 2026 RootLink. All rights reserved.

// Package pagination translates console paging parameters into the ones the
// RootLink API expects for its list endpoints.
//
// # Overview
//
// Console URLs carry "page" and "size"; the API reads "pageNum" and
// "pageSize". Both are 1-indexed.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultSize is the number of items per page if not specified.
	DefaultSize = 10
	// MaxSize is the upper bound for items per page.
	MaxSize = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and size.
type Params struct {
	Page int
	Size int
}

// Parse reads "page" and "size" from a console query string.
//
// # Clamping
//
// Invalid or negative values fall back to [DefaultPage] and [DefaultSize];
// sizes above [MaxSize] are clamped to it.
func Parse(query url.Values) Params {
	page := parseInt(query, "page", DefaultPage)
	size := parseInt(query, "size", DefaultSize)

	if page < 1 {
		page = DefaultPage
	}
	switch {
	case size < 1:
		size = DefaultSize
	case size > MaxSize:
		size = MaxSize
	}

	return Params{Page: page, Size: size}
}

// Upstream returns the API query for these params.
func (p Params) Upstream() url.Values {
	return url.Values{
		"pageNum":  {strconv.Itoa(p.Page)},
		"pageSize": {strconv.Itoa(p.Size)},
	}
}

func parseInt(query url.Values, key string, fallback int) int {
	raw := query.Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
