package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/recall-api/internal/store"
)

// PostgreSQL error codes this store cares about. See
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	notNullViolationCode    = "23502"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// MapError translates driver errors into store sentinels so callers can match
// with errors.Is instead of depending on pgx. The driver error is flattened
// into the message (%v, not %w) to keep pgconn types out of the error chain.
// Errors with no mapping pass through untouched.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case foreignKeyViolationCode:
		return fmt.Errorf("%w: foreign key violation (%s): %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case checkViolationCode:
		return fmt.Errorf("%w: check constraint violation (%s): %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: not null violation (%s): %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
	default:
		return err
	}
}

// IsNotFoundError reports whether err represents a missing row, either as raw
// sql.ErrNoRows or as anything wrapping store.ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound)
}

// CheckRowsAffected turns a zero-row UPDATE or DELETE into notFound, the
// caller's entity-specific sentinel (e.g. store.ErrItemNotFound).
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
