package store

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql operations the stores actually use.
// Both *sql.DB and *sql.Tx satisfy it, so a store can run its queries on a
// plain connection pool or participate in a transaction managed by
// RunInTransaction without any code changes.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
