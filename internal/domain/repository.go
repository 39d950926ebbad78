// Package domain provides types shared by the domain packages.
package domain

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches name or reference, case-insensitively
	Search string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: 50}
}

// Normalize clamps pagination to sane bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = DefaultListFilter().Limit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
