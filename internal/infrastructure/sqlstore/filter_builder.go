package sqlstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/martijn/clientdesk/internal/api/util"
)

// timestampColumns hold times and get their filter values normalized
var timestampColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

var timestampInputFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// normalizeTimestamp rewrites user supplied times as "2006-01-02 15:04:05"
// UTC. SQLite compares stored times as text and the space separator sorts
// before both stored layouts; Postgres parses the value as a timestamp.
func normalizeTimestamp(value string) string {
	for _, format := range timestampInputFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t.UTC().Format("2006-01-02 15:04:05")
		}
	}
	return value
}

// BuildFilterClause builds a WHERE fragment with ? placeholders. Field names
// must already be checked against an allow list by the caller.
func BuildFilterClause(f util.QueryFilter) (string, []interface{}) {
	value := f.Value
	if timestampColumns[f.Field] {
		if s, ok := value.(string); ok {
			value = normalizeTimestamp(s)
		}
	}

	switch f.Operator {
	case util.OpEq:
		return fmt.Sprintf("%s = ?", f.Field), []interface{}{value}
	case util.OpNe:
		return fmt.Sprintf("%s != ?", f.Field), []interface{}{value}
	case util.OpGt:
		return fmt.Sprintf("%s > ?", f.Field), []interface{}{value}
	case util.OpGte:
		return fmt.Sprintf("%s >= ?", f.Field), []interface{}{value}
	case util.OpLt:
		return fmt.Sprintf("%s < ?", f.Field), []interface{}{value}
	case util.OpLte:
		return fmt.Sprintf("%s <= ?", f.Field), []interface{}{value}
	case util.OpContains:
		s, _ := value.(string)
		return fmt.Sprintf("LOWER(%s) LIKE ?", f.Field), []interface{}{"%" + strings.ToLower(s) + "%"}
	case util.OpIn, util.OpNin:
		values, ok := f.Value.([]string)
		if !ok || len(values) == 0 {
			return "", nil
		}
		placeholders := make([]string, len(values))
		args := make([]interface{}, len(values))
		for i, v := range values {
			placeholders[i] = "?"
			args[i] = v
		}
		keyword := "IN"
		if f.Operator == util.OpNin {
			keyword = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", f.Field, keyword, strings.Join(placeholders, ", ")), args
	default:
		return "", nil
	}
}

// ApplyFilters ANDs every filter onto query
func ApplyFilters(query string, args []interface{}, filters []util.QueryFilter) (string, []interface{}) {
	for _, f := range filters {
		clause, filterArgs := BuildFilterClause(f)
		if clause != "" {
			query += " AND " + clause
			args = append(args, filterArgs...)
		}
	}
	return query, args
}

// ApplyOrdering appends ORDER BY, falling back to defaultOrder
func ApplyOrdering(query string, orders []util.OrderClause, defaultOrder string) string {
	if len(orders) == 0 {
		return query + " ORDER BY " + defaultOrder
	}
	clauses := make([]string, 0, len(orders))
	for _, o := range orders {
		direction := "ASC"
		if o.Direction == util.OrderDesc {
			direction = "DESC"
		}
		clauses = append(clauses, fmt.Sprintf("%s %s", o.Field, direction))
	}
	return query + " ORDER BY " + strings.Join(clauses, ", ")
}

// ApplyPagination appends LIMIT/OFFSET when perPage is set
func ApplyPagination(query string, args []interface{}, page, perPage int) (string, []interface{}) {
	if perPage <= 0 {
		return query, args
	}
	query += " LIMIT ?"
	args = append(args, perPage)
	if page > 1 {
		query += " OFFSET ?"
		args = append(args, (page-1)*perPage)
	}
	return query, args
}
