package models

// Default paging values applied when the caller omits or zeroes them.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// MaxPage caps the requested page so that the row offset stays in range.
const MaxPage = 1_000_000

// maxOffset bounds Offset for very large limits.
const maxOffset = 1<<31 - 1

// Pagination describes one page of a filtered listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Page is a listing result with its pagination metadata.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NormalizePaging replaces non-positive page/limit values with the defaults
// and clamps page to MaxPage.
func NormalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

// Offset returns the number of rows skipped before the given page,
// saturating at maxOffset instead of overflowing.
func Offset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > maxOffset/limit {
		return maxOffset
	}
	return (page - 1) * limit
}

// NewPagination builds pagination metadata; TotalPages is ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
	}
}
