package blog

import "inkwell/internal/models"

// PageSize is the fixed number of posts per listing page.
const PageSize = 6

// Page is one page of a post listing plus the metadata the templates
// need to render previous/next controls.
type Page struct {
	Posts      []models.Post
	Number     int // 1-based page index
	TotalCount int
	TotalPages int
}

// newPage clamps the requested page number to a sane value and computes
// the page count. Page numbers below 1 become 1; a listing with no
// matches still has one (empty) page.
func newPage(number int) *Page {
	if number < 1 {
		number = 1
	}
	return &Page{Number: number, TotalPages: 1}
}

// finish fills in the totals after the store query.
func (p *Page) finish(posts []models.Post, total int) {
	p.Posts = posts
	p.TotalCount = total
	p.TotalPages = (total + PageSize - 1) / PageSize
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
}

// offset returns the row offset for the page's store query.
func (p *Page) offset() int {
	return (p.Number - 1) * PageSize
}

// HasPrev reports whether a previous page exists.
func (p *Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p *Page) HasNext() bool { return p.Number < p.TotalPages }

// PrevNumber returns the previous page index.
func (p *Page) PrevNumber() int { return p.Number - 1 }

// NextNumber returns the next page index.
func (p *Page) NextNumber() int { return p.Number + 1 }
