package models

// DefaultPageSize matches the legacy client default.
const DefaultPageSize = 25

// ListFilter captures the pagination and search criteria shared by every
// entity listing: offset window plus an optional free-text term.
type ListFilter struct {
	Search string
	Page   int
	Limit  int
}

// Normalized returns a copy with page and limit clamped to usable values.
func (f ListFilter) Normalized() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	return f
}

// Offset returns the zero-based row offset for the requested window.
func (f ListFilter) Offset() int {
	n := f.Normalized()
	return (n.Page - 1) * n.Limit
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination derives pagination metadata from a filter and a total count.
// TotalPages is always ceil(total/limit).
func NewPagination(filter ListFilter, total int) *Pagination {
	n := filter.Normalized()
	totalPages := 0
	if total > 0 {
		totalPages = (total + n.Limit - 1) / n.Limit
	}
	return &Pagination{Page: n.Page, Limit: n.Limit, Total: total, TotalPages: totalPages}
}
