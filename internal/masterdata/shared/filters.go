package shared

import (
	"net/http"
	"strconv"
)

// ListFilters carries common search/sort/pagination parameters.
type ListFilters struct {
	Search  string
	Page    int
	Limit   int
	SortBy  string
	SortDir string
}

// ParseListFilters reads filters from the request query string.
func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{
		Search:  q.Get("search"),
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
		Page:    1,
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filters.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	return filters
}
