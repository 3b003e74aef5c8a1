package domain

import "fmt"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects one page of a list. Out of range values are rejected,
// never clamped.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest applies defaults for omitted values. Nil means omitted.
func NewPageRequest(page, pageSize *int) PageRequest {
	p := PageRequest{Page: DefaultPage, PageSize: DefaultPageSize}
	if page != nil {
		p.Page = *page
	}
	if pageSize != nil {
		p.PageSize = *pageSize
	}
	return p
}

// Validate rejects out of range values with ErrValidationFailed.
func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return Invalid("page must be >= 1")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return Invalid(fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize))
	}
	return nil
}

// Offset is the number of rows skipped before this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns ceil(total / pageSize).
func (p PageRequest) TotalPages(total int64) int {
	if p.PageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
}
