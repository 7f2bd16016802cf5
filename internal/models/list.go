package models

// ListParams параметры списочных запросов.
type ListParams struct {
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// Page страница результатов со счётчиком общего количества строк.
type Page[T any] struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  []T `json:"results"`
}

// TrackFilter условия выборки треков.
// UserID ограничивает выборку автором, PublicOnly скрывает приватные треки.
type TrackFilter struct {
	UserID     int64
	PublicOnly bool
	Search     string
	Ordering   string
	Limit      int
	Offset     int
}

// NewPage собирает страницу результатов.
func NewPage[T any](results []T, count, page, pageSize int) *Page[T] {
	if results == nil {
		results = make([]T, 0)
	}
	return &Page[T]{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  results,
	}
}
