package shared

// ListParams carries the standard page/limit/search query parameters.
// Page is 1-indexed; Limit defaults to 10.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Normalize applies the listing defaults.
func (p ListParams) Normalize() ListParams {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	return p
}

// Offset computes the row offset for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
