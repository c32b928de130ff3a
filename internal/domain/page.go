package domain

// DefaultPageSize is the number of trips shown per feed page.
const DefaultPageSize = 5

// PageParams carries a requested page number and page size from the HTTP layer
// to the feed projector. Page is 1-indexed.
type PageParams struct {
	Page int
	Size int
}

// NewPageParams builds PageParams from an optional page query param.
// A nil or non-positive page falls back to 1; a non-positive size falls back to
// DefaultPageSize. Pages beyond the last one are kept as requested so the
// projector can report them as empty.
func NewPageParams(page *int, size int) PageParams {
	p := PageParams{Page: 1, Size: size}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	return p
}

// Offset returns the zero-based index of the first item on the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Size
}

// TotalPages returns how many pages total items fill.
func (p PageParams) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}
