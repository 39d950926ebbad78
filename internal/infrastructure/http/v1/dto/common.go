// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"datasets/internal/domain"
)

// ListQuery contains the query parameters of list endpoints.
type ListQuery struct {
	Search string `form:"search" binding:"omitempty,max=200"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// Filter converts the query to a domain filter.
func (q ListQuery) Filter() domain.ListFilter {
	f := domain.DefaultListFilter()
	f.Search = q.Search
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset
	return f
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult maps a domain page, converting each item with mapFn.
func FromListResult[S, T any](res domain.ListResult[S], mapFn func(S) T) ListResponse[T] {
	items := make([]T, len(res.Items))
	for i, item := range res.Items {
		items[i] = mapFn(item)
	}
	return ListResponse[T]{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
