package database

import "github.com/Masterminds/squirrel"

// Psql builds PostgreSQL statements with $n placeholders for pgx.
var Psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Page appends LIMIT/OFFSET to a select.
func Page(b squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	return b.Limit(uint64(limit)).Offset(uint64(offset))
}
