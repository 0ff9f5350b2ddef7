// internal/adapters/db/queries.go
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// countWhere runs SELECT COUNT(*) against table with the same predicates
// used by the page query.
func countWhere(ctx context.Context, db *Database, table string, where squirrel.Sqlizer) (int64, error) {
	qb := psql.Select("COUNT(*)").From(table)
	if where != nil {
		qb = qb.Where(where)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return total, nil
}

// paginate applies limit and offset when set.
func paginate(qb squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	if offset > 0 {
		qb = qb.Offset(uint64(offset))
	}
	return qb
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
