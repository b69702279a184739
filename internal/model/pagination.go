package model

import "math"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPageNumber keeps Offset within int for every accepted limit.
	MaxPageNumber = math.MaxInt32 / MaxPageLimit
	DefaultFeaturedN = 6
	DashboardRecentN = 5
)

// Page is a 1-based page request after normalization.
type Page struct {
	Number int
	Limit  int
}

// NewPage normalizes a raw page request: page < 1 becomes 1, page is capped
// at MaxPageNumber, limit < 1 becomes the default and limit is capped at
// MaxPageLimit.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset returns the number of records to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
	NextPage   *int  `json:"nextPage"`
	PrevPage   *int  `json:"prevPage"`
}

// NewPagination computes the descriptor for page p of a result set holding
// total records.
func NewPagination(p Page, total int64) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}

	pg := Pagination{
		Page:       p.Number,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Number < totalPages,
		HasPrev:    total > 0 && p.Number > 1,
	}
	if pg.HasNext {
		next := p.Number + 1
		pg.NextPage = &next
	}
	if pg.HasPrev {
		prev := p.Number - 1
		pg.PrevPage = &prev
	}
	return pg
}

// ProductFilter selects active products. Zero values mean "no constraint".
type ProductFilter struct {
	Category Category
	MinPrice *float64
	MaxPrice *float64
	Search   string
}

// PagedProducts is one page of products with its descriptor.
type PagedProducts struct {
	Items      []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// PagedUsers is one page of users with its descriptor.
type PagedUsers struct {
	Items      []User     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// DashboardStats are the headline numbers of the admin dashboard.
type DashboardStats struct {
	TotalUsers      int64 `json:"totalUsers"`
	TotalProducts   int64 `json:"totalProducts"`
	TotalCategories int   `json:"totalCategories"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	Stats          DashboardStats `json:"stats"`
	RecentProducts []Product      `json:"recentProducts"`
	RecentUsers    []User         `json:"recentUsers"`
}
