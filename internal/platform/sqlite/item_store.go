package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// Open creates a new database connection and ensures the schema is up to
// date. dsn is a file path or ":memory:" for an ephemeral database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite permits a single writer; one pooled connection sidesteps
	// SQLITE_BUSY under concurrent writes and keeps :memory: databases from
	// vanishing when the pool opens a second connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// ensureSchema applies the schema inside a transaction so a partially
// created schema never survives a failure.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		return nil
	})
}

// SQLiteItemStore implements the store.ItemStore interface
// using a SQLite database as the storage backend.
type SQLiteItemStore struct {
	db     store.Querier
	logger *slog.Logger
}

// NewSQLiteItemStore creates a new SQLite implementation of the ItemStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewSQLiteItemStore(db store.Querier, logger *slog.Logger) *SQLiteItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure SQLiteItemStore implements store.ItemStore interface
var _ store.ItemStore = (*SQLiteItemStore)(nil)

// itemColumns is the column list every item query selects, in scan order.
const itemColumns = `id, collection_id, tag_id, front, back, review_count,
	last_reviewed_at, next_review_at, created_at, updated_at`

// FetchDue implements store.ItemStore.FetchDue. Ownership of the collection
// is checked first so a learner probing another learner's collection gets
// store.ErrAccessDenied rather than an empty result.
func (s *SQLiteItemStore) FetchDue(
	ctx context.Context,
	learnerID, collectionID uuid.UUID,
	tagID *uuid.UUID,
	limit int,
) ([]domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.checkCollectionOwnership(ctx, learnerID, collectionID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// SQLite has no NULLS FIRST; ordering on the IS NULL expression first
	// puts never-scheduled items ahead, matching the postgres query.
	var query string
	var args []interface{}

	if tagID != nil {
		query = `
			SELECT ` + itemColumns + `
			FROM items
			WHERE collection_id = ?
			  AND is_active = 1
			  AND (next_review_at IS NULL OR next_review_at <= ?)
			  AND tag_id = ?
			ORDER BY (next_review_at IS NULL) DESC, next_review_at ASC, created_at ASC
			LIMIT ?
		`
		args = []interface{}{collectionID, now, *tagID, limit}
	} else {
		query = `
			SELECT ` + itemColumns + `
			FROM items
			WHERE collection_id = ?
			  AND is_active = 1
			  AND (next_review_at IS NULL OR next_review_at <= ?)
			ORDER BY (next_review_at IS NULL) DESC, next_review_at ASC, created_at ASC
			LIMIT ?
		`
		args = []interface{}{collectionID, now, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due items",
			slog.String("collection_id", collectionID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query due items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items, err := scanItems(rows)
	if err != nil {
		log.Error("failed to scan due items",
			slog.String("collection_id", collectionID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("fetched due items",
		slog.String("collection_id", collectionID.String()),
		slog.Int("count", len(items)))

	return items, nil
}

// GetByID implements store.ItemStore.GetByID.
// Returns store.ErrItemNotFound if the item does not exist.
func (s *SQLiteItemStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, store.ErrItemNotFound
		}
		log.Error("failed to get item by ID",
			slog.String("item_id", id.String()),
			slog.String("error", err.Error()))
		return domain.Item{}, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// RecordReview implements store.ItemStore.RecordReview. The review count is
// incremented in SQL so concurrent sessions reviewing the same item cannot
// lose an increment.
func (s *SQLiteItemStore) RecordReview(
	ctx context.Context,
	itemID uuid.UUID,
	nextReviewAt, lastReviewedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE items
		SET next_review_at = ?,
		    last_reviewed_at = ?,
		    review_count = review_count + 1,
		    updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		nextReviewAt,
		lastReviewedAt,
		time.Now().UTC(),
		itemID,
	)
	if err != nil {
		log.Error("failed to record review",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to record review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Warn("review targeted a missing item",
			slog.String("item_id", itemID.String()))
		return store.ErrItemNotFound
	}

	log.Debug("recorded review",
		slog.String("item_id", itemID.String()),
		slog.Time("next_review_at", nextReviewAt))

	return nil
}

// checkCollectionOwnership verifies the collection exists and belongs to the
// learner. Returns store.ErrCollectionNotFound or store.ErrAccessDenied.
func (s *SQLiteItemStore) checkCollectionOwnership(
	ctx context.Context,
	learnerID, collectionID uuid.UUID,
) error {
	var ownerID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT learner_id FROM collections WHERE id = ?`,
		collectionID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrCollectionNotFound
		}
		return fmt.Errorf("failed to look up collection: %w", err)
	}

	if ownerID != learnerID {
		return store.ErrAccessDenied
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanItem reads one item row in itemColumns order. Nullable columns
// (tag_id and the two review timestamps) map to a nil pointer and zero
// times respectively.
func scanItem(row rowScanner) (domain.Item, error) {
	var item domain.Item
	var tagID sql.NullString
	var lastReviewedAt, nextReviewAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.CollectionID,
		&tagID,
		&item.Front,
		&item.Back,
		&item.ReviewCount,
		&lastReviewedAt,
		&nextReviewAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return domain.Item{}, err
	}

	if tagID.Valid {
		parsed, err := uuid.Parse(tagID.String)
		if err != nil {
			return domain.Item{}, fmt.Errorf("invalid tag_id %q: %w", tagID.String, err)
		}
		item.TagID = &parsed
	}
	if lastReviewedAt.Valid {
		item.LastReviewedAt = lastReviewedAt.Time
	}
	if nextReviewAt.Valid {
		item.NextReviewAt = nextReviewAt.Time
	}

	return item, nil
}

// scanItems drains a result set of item rows.
func scanItems(rows *sql.Rows) ([]domain.Item, error) {
	var items []domain.Item

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}
