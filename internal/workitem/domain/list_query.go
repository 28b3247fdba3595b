package domain

import "strings"

// SortField is a column work item listings can be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByTitle     SortField = "title"
	SortByStatus    SortField = "status"
)

// ListQuery selects one page of work items.
type ListQuery struct {
	Offset     int
	Limit      int
	SortBy     SortField
	Descending bool
}

// ParseSortField accepts the snake_case column name or its camelCase form.
// An empty value selects created_at.
func ParseSortField(value string) (SortField, error) {
	switch strings.TrimSpace(value) {
	case "", "created_at", "createdAt":
		return SortByCreatedAt, nil
	case "updated_at", "updatedAt":
		return SortByUpdatedAt, nil
	case "title":
		return SortByTitle, nil
	case "status":
		return SortByStatus, nil
	}
	return "", ErrInvalidSortField
}

// NewListQuery builds a ListQuery from raw request values. Direction defaults to
// descending; only "asc" (any case) selects ascending order.
func NewListQuery(offset, limit int, sortBy, direction string) (ListQuery, error) {
	field, err := ParseSortField(sortBy)
	if err != nil {
		return ListQuery{}, err
	}
	return ListQuery{
		Offset:     offset,
		Limit:      limit,
		SortBy:     field,
		Descending: !strings.EqualFold(strings.TrimSpace(direction), "asc"),
	}, nil
}

// OrderBy renders the ORDER BY expression for the query, qualified with the
// given table alias. The id column breaks ties so pages are stable.
func (q ListQuery) OrderBy(alias string) string {
	field := q.SortBy
	if field == "" {
		field = SortByCreatedAt
	}
	direction := "DESC"
	if !q.Descending {
		direction = "ASC"
	}
	return alias + "." + string(field) + " " + direction + ", " + alias + ".id " + direction
}
