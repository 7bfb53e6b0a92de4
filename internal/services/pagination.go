package services

const maxPerPage = 100

// Page is a normalized 1-based page request.
type Page struct {
	Number  int
	PerPage int
}

// NewPage clamps page to >= 1 and perPage to [1, 100], substituting
// defaultPerPage when perPage is not positive.
func NewPage(page, perPage, defaultPerPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Page{Number: page, PerPage: perPage}
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

// Pages returns the number of pages needed for total items.
func (p Page) Pages(total int64) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
}
