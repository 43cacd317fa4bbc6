package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction. The
// transaction is committed when the function returns nil and rolled back
// when it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes fn within a transaction on db. A panic inside fn
// rolls the transaction back and then propagates. The error returned by fn
// comes back unwrapped so callers can keep matching on their own sentinels.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollbackAfterPanic(log, tx, p)
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("transaction committed successfully")
	return nil
}

// rollbackAfterPanic makes a best-effort rollback while a panic is in
// flight. The panic is logged either way; it is about to be re-raised.
func rollbackAfterPanic(log *slog.Logger, tx *sql.Tx, p interface{}) {
	if err := tx.Rollback(); err != nil {
		log.Error("failed to roll back transaction after panic",
			slog.String("error", err.Error()),
			slog.Any("panic", p))
		return
	}
	log.Error("rolled back transaction after panic",
		slog.Any("panic", p))
}
