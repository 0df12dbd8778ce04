package models

// CollectionResponse is the envelope for paginated listings.
type CollectionResponse[T any] struct {
	Items       []T   `json:"items"`
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalCount  int64 `json:"total_count"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NewCollectionResponse builds the pagination envelope for one page of items.
func NewCollectionResponse[T any](items []T, page, pageSize int, totalCount int64) CollectionResponse[T] {
	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if items == nil {
		items = []T{}
	}
	return CollectionResponse[T]{
		Items:       items,
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
