package user

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

// DefaultSearchLimit caps directory searches without an explicit limit
const DefaultSearchLimit = 50

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// searchFilter matches a free-text query against name, email and institutional id
func searchFilter(query string) squirrel.Sqlizer {
	query = strings.TrimSpace(query)
	if query == "" {
		return squirrel.Expr("TRUE")
	}
	pattern := "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query) + "%"
	return squirrel.Or{
		squirrel.ILike{"name": pattern},
		squirrel.ILike{"email": pattern},
		squirrel.ILike{"institutional_id": pattern},
	}
}

func clampLimit(limit int) uint64 {
	if limit <= 0 || limit > 100 {
		return DefaultSearchLimit
	}
	return uint64(limit)
}
