// internal/core/services/pagination.go
package services

import "github.com/ammerola/analytics-reports/internal/core/ports"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps paging input and returns the limit and offset to query with.
func normalizePage(params *ports.ListParams) (limit, offset int) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}
	return params.PageSize, (params.Page - 1) * params.PageSize
}

func newListResult[T any](items []*T, params ports.ListParams, total int64) *ports.ListResult[T] {
	if items == nil {
		items = []*T{}
	}

	var totalPages int
	if params.PageSize > 0 {
		totalPages = int(total) / params.PageSize
		if int(total)%params.PageSize > 0 {
			totalPages++
		}
	}

	return &ports.ListResult[T]{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
