package utils

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-mixdown/internal/repository"
)

// ParseListQuery reads pagination, sorting, search and equality filters from the query string.
//
// Sorting accepts ?sort=created_at:desc,name:asc and ?sort=-created_at,+name.
// Filters use ?filter[field]=value; only the fields listed in filterable are read.
func ParseListQuery(c *gin.Context, filterable ...string) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Limit, query.Offset = GetPagination(c)
	query.Sort = parseSorting(c.Query("sort"))
	query.Search = strings.TrimSpace(c.Query("search"))

	for _, field := range filterable {
		if value, ok := c.GetQuery("filter[" + field + "]"); ok && value != "" {
			query.Filters = append(query.Filters, repository.FilterCondition{Field: field, Value: value})
		}
	}
	return query
}

func parseSorting(sortParam string) []repository.SortField {
	if sortParam == "" {
		return nil
	}

	parts := strings.Split(sortParam, ",")
	sortFields := make([]repository.SortField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var field string
		direction := repository.SortAsc

		switch {
		case strings.HasPrefix(part, "-"):
			field = strings.TrimPrefix(part, "-")
			direction = repository.SortDesc
		case strings.HasPrefix(part, "+"):
			field = strings.TrimPrefix(part, "+")
		case strings.Contains(part, ":"):
			before, after, _ := strings.Cut(part, ":")
			field = strings.TrimSpace(before)
			if strings.EqualFold(strings.TrimSpace(after), "desc") {
				direction = repository.SortDesc
			}
		default:
			field = part
		}

		if field != "" {
			sortFields = append(sortFields, repository.SortField{Field: field, Direction: direction})
		}
	}

	return sortFields
}
