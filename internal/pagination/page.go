// Package pagination computes page-window metadata for listing results.
package pagination

// Page describes one window into a result set. Pages are 1-indexed; a
// page beyond the result set is valid and simply holds no items.
type Page struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalProperties int64 `json:"totalProperties"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPrevPage     bool  `json:"hasPrevPage"`
}

// NewPage builds the pagination envelope for a result set of total items
// viewed through pageSize-sized windows. TotalPages is ceil(total/pageSize),
// so zero matches yields zero pages.
func NewPage(currentPage, pageSize int, total int64) Page {
	if currentPage < 1 {
		currentPage = 1
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	return Page{
		CurrentPage:     currentPage,
		TotalPages:      totalPages,
		TotalProperties: total,
		HasNextPage:     currentPage < totalPages,
		HasPrevPage:     currentPage > 1,
	}
}

// Offset returns the number of rows to skip for the given window.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
