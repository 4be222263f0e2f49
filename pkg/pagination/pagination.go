// Package pagination pages in-memory result sets for list endpoints.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

// Page size limits.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params selects one page of a result set. Page is 1-based.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns the first page at the default size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// FromRequest reads the page and per_page query parameters. Values that are
// missing, malformed or out of range keep their defaults.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	p := DefaultParams()
	if v, ok := positiveInt(q, "page", 0); ok {
		p.Page = v
	}
	if v, ok := positiveInt(q, "per_page", MaxPerPage); ok {
		p.PerPage = v
	}
	return p
}

// positiveInt parses q[key] as an int in [1, limit]. A limit of zero means
// unbounded.
func positiveInt(q url.Values, key string, limit int) (int, bool) {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 1 || (limit > 0 && v > limit) {
		return 0, false
	}
	return v, true
}

// Slice returns the items on page p. A page past the end yields an empty,
// non-nil slice.
func Slice[T any](items []T, p Params) []T {
	start := p.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	return items[start:min(start+p.PerPage, len(items))]
}

// Result is one page of a list response with the totals needed to render
// page navigation.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult builds the envelope for page, which holds only the current
// page's items out of total.
func NewResult[T any](page []T, total int, p Params) Result[T] {
	if page == nil {
		page = []T{}
	}
	pages := 0
	if p.PerPage > 0 {
		pages = (total + p.PerPage - 1) / p.PerPage
	}
	return Result[T]{
		Data:       page,
		TotalCount: total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}
