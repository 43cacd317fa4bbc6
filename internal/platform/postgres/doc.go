// Package postgres implements the repository interfaces from internal/store
// against PostgreSQL, using the pgx driver through database/sql. It owns the
// SQL for due-item fetches and review write-backs, the mapping between
// database rows and domain values, and the embedded goose migrations that
// define the schema.
package postgres
