package dto

// PageQuery carries the common list parameters
type PageQuery struct {
	Page      int
	PageSize  int
	Search    string
	SortBy    string
	SortOrder string
}

// MaxPageSize bounds page sizes requested by clients
const MaxPageSize = 100

// Normalize applies defaults and whitelists the sort column
func (q *PageQuery) Normalize(defaultPageSize int, sortable map[string]bool, defaultSort string) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if !sortable[q.SortBy] {
		q.SortBy = defaultSort
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		q.SortOrder = "desc"
	}
}

// Offset returns the row offset of the current page
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// PageMeta describes the position of a page in a result set
type PageMeta struct {
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPageMeta calculates total pages for a result set
func NewPageMeta(totalCount int64, q PageQuery) PageMeta {
	totalPages := 0
	if q.PageSize > 0 {
		totalPages = int(totalCount) / q.PageSize
		if int(totalCount)%q.PageSize > 0 {
			totalPages++
		}
	}
	return PageMeta{
		TotalCount: totalCount,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}
}
