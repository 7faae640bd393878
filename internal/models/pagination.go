package models

import "github.com/gofiber/fiber/v2"

// PageInfo describes one page of a paginated listing.
// The wire form carries a collection-specific total key ("totalBlogs",
// "totalComments", "totalUsers") alongside the fixed fields.
type PageInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
	Total       int64 `json:"-"`
}

// NewPageInfo computes pagination metadata for the given page, limit and
// total item count. Page and limit are assumed already clamped to sane
// values by the handler layer.
func NewPageInfo(page, limit int, total int64) PageInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return PageInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
		Total:       total,
	}
}

// Map returns the wire form of the page info using totalKey for the
// collection-specific total count.
func (p PageInfo) Map(totalKey string) fiber.Map {
	return fiber.Map{
		"currentPage": p.CurrentPage,
		"totalPages":  p.TotalPages,
		totalKey:      p.Total,
		"hasNext":     p.HasNext,
		"hasPrev":     p.HasPrev,
	}
}
