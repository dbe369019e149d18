package repository

import (
	"gorm.io/gorm"
)

// FieldMapping maps API field names to database column names.
type FieldMapping map[string]string

// SortDirection represents ascending or descending sort order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortField represents a field to sort by with direction.
type SortField struct {
	Field     string
	Direction SortDirection
}

// FilterCondition is an equality filter on a mapped field.
type FilterCondition struct {
	Field string
	Value any
}

// ListQuery contains parameters for listing entities.
type ListQuery struct {
	Limit   int
	Offset  int
	Sort    []SortField
	Filters []FilterCondition
	Search  string
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// DefaultListLimit is the page size used when none is given.
const DefaultListLimit = 20

// NewListQuery creates a ListQuery with the default page size.
func NewListQuery() *ListQuery {
	return &ListQuery{Limit: DefaultListLimit}
}

// ApplyListQuery filters, counts, sorts and paginates db into a ListResult.
// Only fields present in fieldMapping are filtered or sorted on.
func ApplyListQuery[T any](db *gorm.DB, query *ListQuery, fieldMapping FieldMapping, searchFields []string, defaultSort string) (*ListResult[T], error) {
	if query == nil {
		query = NewListQuery()
	}

	// A session lets the count and the page query start from the same conditions.
	db = db.Scopes(SearchScope(searchFields, query.Search), FilterScope(query.Filters, fieldMapping)).
		Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, ParseDBError(err)
	}

	var data []T
	err := db.Scopes(
		SortScope(query.Sort, fieldMapping, defaultSort),
		PaginationScope(query.Limit, query.Offset),
	).Find(&data).Error
	if err != nil {
		return nil, ParseDBError(err)
	}

	return &ListResult[T]{
		Data:   data,
		Total:  total,
		Limit:  query.Limit,
		Offset: query.Offset,
	}, nil
}
