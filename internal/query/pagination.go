package query

import "encoding/json"

// DefaultLimit is the page size used when a page is requested without a limit.
const DefaultLimit = 10

// PaginatedResult is one page of results. Pages is derived at construction.
type PaginatedResult[T any] struct {
	Page    int `json:"page"`
	Limit   int `json:"limit"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
	Results []T `json:"results"`
}

// NewPaginatedResult builds a page and computes the number of pages.
func NewPaginatedResult[T any](results []T, page, limit, total int) PaginatedResult[T] {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	if results == nil {
		results = []T{}
	}
	return PaginatedResult[T]{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		Results: results,
	}
}

// ListResult is either every matching row or a single page of them.
type ListResult[T any] struct {
	Items     []T
	Paginated *PaginatedResult[T]
}

// Rows returns the rows held by r regardless of its shape.
func (r ListResult[T]) Rows() []T {
	if r.Paginated != nil {
		return r.Paginated.Results
	}
	return r.Items
}

// MarshalJSON encodes an unpaginated result as a bare array.
func (r ListResult[T]) MarshalJSON() ([]byte, error) {
	if r.Paginated != nil {
		return json.Marshal(r.Paginated)
	}
	if r.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Items)
}
