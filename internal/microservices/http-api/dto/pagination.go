package dto

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Paginated wraps one page of any listing
type Paginated[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a paginated response
func NewPaginated[T any](data []T, total int64, page, pageSize int) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &Paginated[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// MapPage converts a page of models into a page of responses
func MapPage[M any, T any](items []M, total int64, page, pageSize int, fn func(*M) T) *Paginated[T] {
	data := make([]T, 0, len(items))
	for i := range items {
		data = append(data, fn(&items[i]))
	}
	return NewPaginated(data, total, page, pageSize)
}
