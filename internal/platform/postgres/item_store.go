package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// PostgresItemStore implements the store.ItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresItemStore struct {
	db     store.Querier
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the ItemStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresItemStore(db store.Querier, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure PostgresItemStore implements store.ItemStore interface
var _ store.ItemStore = (*PostgresItemStore)(nil)

// itemColumns is the column list every item query selects, in scan order.
const itemColumns = `id, collection_id, tag_id, front, back, review_count,
	last_reviewed_at, next_review_at, created_at, updated_at`

// FetchDue implements store.ItemStore.FetchDue. Ownership of the collection
// is checked first so a learner probing another learner's collection gets
// store.ErrAccessDenied rather than an empty result.
func (s *PostgresItemStore) FetchDue(
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

	var query string
	var args []interface{}

	if tagID != nil {
		query = `
			SELECT ` + itemColumns + `
			FROM items
			WHERE collection_id = $1
			  AND is_active = TRUE
			  AND (next_review_at IS NULL OR next_review_at <= $2)
			  AND tag_id = $3
			ORDER BY next_review_at ASC NULLS FIRST, created_at ASC
			LIMIT $4
		`
		args = []interface{}{collectionID, now, *tagID, limit}
	} else {
		query = `
			SELECT ` + itemColumns + `
			FROM items
			WHERE collection_id = $1
			  AND is_active = TRUE
			  AND (next_review_at IS NULL OR next_review_at <= $2)
			ORDER BY next_review_at ASC NULLS FIRST, created_at ASC
			LIMIT $3
		`
		args = []interface{}{collectionID, now, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due items",
			slog.String("collection_id", collectionID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query due items: %w", MapError(err))
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
func (s *PostgresItemStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1
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
		return domain.Item{}, fmt.Errorf("failed to get item: %w", MapError(err))
	}

	return item, nil
}

// RecordReview implements store.ItemStore.RecordReview. The review count is
// incremented in SQL so concurrent sessions reviewing the same item cannot
// lose an increment.
func (s *PostgresItemStore) RecordReview(
	ctx context.Context,
	itemID uuid.UUID,
	nextReviewAt, lastReviewedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE items
		SET next_review_at = $1,
		    last_reviewed_at = $2,
		    review_count = review_count + 1,
		    updated_at = $3
		WHERE id = $4
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
		return fmt.Errorf("failed to record review: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrItemNotFound); err != nil {
		log.Warn("review targeted a missing item",
			slog.String("item_id", itemID.String()))
		return err
	}

	log.Debug("recorded review",
		slog.String("item_id", itemID.String()),
		slog.Time("next_review_at", nextReviewAt))

	return nil
}

// checkCollectionOwnership verifies the collection exists and belongs to the
// learner. Returns store.ErrCollectionNotFound or store.ErrAccessDenied.
func (s *PostgresItemStore) checkCollectionOwnership(
	ctx context.Context,
	learnerID, collectionID uuid.UUID,
) error {
	var ownerID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT learner_id FROM collections WHERE id = $1`,
		collectionID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrCollectionNotFound
		}
		return fmt.Errorf("failed to look up collection: %w", MapError(err))
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
	var tagID uuid.NullUUID
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
		id := tagID.UUID
		item.TagID = &id
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
