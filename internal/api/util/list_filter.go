package util

import (
	"fmt"
	"slices"
	"strings"
)

const (
	DefaultPerPage = 25
	MaxPerPage     = 100
)

// ListFilter holds the parsed query, order and paging of a list request
type ListFilter struct {
	Filters []QueryFilter
	Order   []OrderClause
	Page    int
	PerPage int
}

// IsZero reports whether no filtering, ordering or paging was requested
func (f ListFilter) IsZero() bool {
	return len(f.Filters) == 0 && len(f.Order) == 0 && f.Page == 0 && f.PerPage == 0
}

// ParseListFilter parses the query and order parameters of a list request
// and checks every referenced field against the allowed sets. Page falls
// back to 1 and perPage is clamped to [1, MaxPerPage].
func ParseListFilter(queryStr, orderStr string, page, perPage int, queryFields, orderFields []string) (ListFilter, error) {
	filters, err := ParseQueryString(queryStr)
	if err != nil {
		return ListFilter{}, err
	}
	for _, f := range filters {
		if err := checkField("query", f.Field, queryFields); err != nil {
			return ListFilter{}, err
		}
	}

	orders, err := ParseOrderString(orderStr)
	if err != nil {
		return ListFilter{}, err
	}
	for _, o := range orders {
		if err := checkField("order", o.Field, orderFields); err != nil {
			return ListFilter{}, err
		}
	}

	if page < 1 {
		page = 1
	}
	switch {
	case perPage < 1:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}

	return ListFilter{Filters: filters, Order: orders, Page: page, PerPage: perPage}, nil
}

func checkField(kind, field string, allowed []string) error {
	if slices.Contains(allowed, field) {
		return nil
	}
	return fmt.Errorf("invalid %s field: %s (valid fields: %s)", kind, field, strings.Join(allowed, ", "))
}
