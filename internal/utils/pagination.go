// Package utils provides the pagination helpers shared by the listing
// endpoint and the registration service: query-string parsing and the
// page/limit bounds of the registros-recientes contract.
package utils

import "strconv"

// Pagination bounds for listing endpoints.
const (
	// DefaultPageSize is used when the client sends no limit, or an
	// unusable one.
	DefaultPageSize = 10

	// MaxPageSize caps how many rows a single page may request.
	MaxPageSize = 100
)

// AtoiDefault parses s as an integer, returning def when s is empty or not
// a plain base-10 number. Used for query parameters, where absent and
// malformed values both mean "use the default".
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampPage normalizes a 1-based page number; anything below 1 becomes 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampLimit bounds a requested page size to [1, MaxPageSize]. Zero and
// negative values fall back to DefaultPageSize.
func ClampLimit(limit int) int {
	switch {
	case limit < 1:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	}
	return limit
}

// TotalPages returns how many pages of the given size cover total rows.
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
