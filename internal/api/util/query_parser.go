package util

import (
	"fmt"
	"slices"
	"strings"
)

// QueryOperator compares a client column against a value
type QueryOperator string

const (
	OpEq       QueryOperator = "eq"
	OpNe       QueryOperator = "ne"
	OpGt       QueryOperator = "gt"
	OpGte      QueryOperator = "gte"
	OpLt       QueryOperator = "lt"
	OpLte      QueryOperator = "lte"
	OpIn       QueryOperator = "in"
	OpNin      QueryOperator = "nin"
	OpContains QueryOperator = "contains"
)

// Client columns are NOT NULL, so there are no null checks.
var queryOperators = []QueryOperator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpNin, OpContains}

// QueryFilter is one condition of a list query. Value is a string, or a
// []string for in and nin.
type QueryFilter struct {
	Field    string
	Operator QueryOperator
	Value    interface{}
}

type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

type OrderClause struct {
	Field     string
	Direction OrderDirection
}

const (
	clauseSeparator = ","
	partSeparator   = "|"
	valueSeparator  = ";"
)

// ParseQueryString reads comma separated conditions written as
// field|value (equality) or field|operator|value.
//
//	name|contains|silva,created_at|gte|2025-01-01,cpf|in|123...;456...
func ParseQueryString(raw string) ([]QueryFilter, error) {
	var filters []QueryFilter
	for _, clause := range splitClauses(raw) {
		filter, err := parseCondition(clause)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}
	return filters, nil
}

// ParseOrderString reads comma separated field|direction clauses. A bare
// field sorts ascending.
func ParseOrderString(raw string) ([]OrderClause, error) {
	var orders []OrderClause
	for _, clause := range splitClauses(raw) {
		field, direction, hasDirection := strings.Cut(clause, partSeparator)
		order := OrderClause{Field: field, Direction: OrderAsc}

		if hasDirection {
			switch d := OrderDirection(strings.ToLower(direction)); d {
			case OrderAsc, OrderDesc:
				order.Direction = d
			default:
				return nil, fmt.Errorf("invalid order direction %q in %q: use asc or desc", direction, clause)
			}
		}
		if order.Field == "" {
			return nil, fmt.Errorf("invalid order clause %q: missing field", clause)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func parseCondition(clause string) (QueryFilter, error) {
	field, rest, ok := strings.Cut(clause, partSeparator)
	if !ok || field == "" {
		return QueryFilter{}, fmt.Errorf("invalid query condition %q: expected field|value or field|operator|value", clause)
	}

	name, value, hasOperator := strings.Cut(rest, partSeparator)
	if !hasOperator {
		return QueryFilter{Field: field, Operator: OpEq, Value: rest}, nil
	}
	if strings.Contains(value, partSeparator) {
		return QueryFilter{}, fmt.Errorf("invalid query condition %q: too many parts", clause)
	}

	op := QueryOperator(strings.ToLower(name))
	if !slices.Contains(queryOperators, op) {
		return QueryFilter{}, fmt.Errorf("invalid operator %q in %q", name, clause)
	}

	filter := QueryFilter{Field: field, Operator: op, Value: value}
	if op == OpIn || op == OpNin {
		filter.Value = strings.Split(value, valueSeparator)
	}
	return filter, nil
}

func splitClauses(raw string) []string {
	var clauses []string
	for _, clause := range strings.Split(raw, clauseSeparator) {
		if clause = strings.TrimSpace(clause); clause != "" {
			clauses = append(clauses, clause)
		}
	}
	return clauses
}
