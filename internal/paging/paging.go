// internal/paging/paging.go
package paging

import "strconv"

const (
	// DefaultSize is the page size used when the caller does not set one.
	DefaultSize = 20

	// MaxSize caps the page size a caller may request.
	MaxSize = 100
)

// PageRequest describes which slice of a filtered result set to return.
// Page numbers start at 1.
type PageRequest struct {
	Number int `json:"page"`
	Size   int `json:"size"`
}

// Normalize returns a copy of the request with defaults applied and the
// size clamped to MaxSize.
func (r PageRequest) Normalize() PageRequest {
	if r.Number < 1 {
		r.Number = 1
	}
	if r.Size < 1 {
		r.Size = DefaultSize
	}
	if r.Size > MaxSize {
		r.Size = MaxSize
	}
	return r
}

// Offset returns the number of records preceding the requested page.
func (r PageRequest) Offset() int {
	r = r.Normalize()
	return (r.Number - 1) * r.Size
}

// Parse builds a PageRequest from raw query-string values. Anything
// unparseable falls back to the defaults via Normalize.
func Parse(page, size string) PageRequest {
	number, _ := strconv.Atoi(page)
	s, _ := strconv.Atoi(size)
	return PageRequest{Number: number, Size: s}.Normalize()
}

// Page is one slice of a filtered result set. Number and Size echo the
// request so callers can page consistently.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Number     int `json:"page"`
	Size       int `json:"size"`
}

// NewPage builds a Page echoing the normalized request parameters.
func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	req = req.Normalize()
	return Page[T]{
		Items:      items,
		TotalCount: total,
		Number:     req.Number,
		Size:       req.Size,
	}
}
