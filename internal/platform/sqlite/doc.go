// Package sqlite implements the repository interfaces from internal/store
// against SQLite via the pure-Go modernc.org/sqlite driver. It exists for
// single-node deployments and local development where running PostgreSQL is
// not worth the operational cost; behavior matches the postgres package.
package sqlite
