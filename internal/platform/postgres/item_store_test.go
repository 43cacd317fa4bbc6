package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/recall-api/internal/store"
)

func TestNewPostgresItemStore(t *testing.T) {
	t.Parallel() // Enable parallel execution

	t.Run("nil db panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			NewPostgresItemStore(nil, slog.Default())
		})
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()
		s := NewPostgresItemStore(&sql.DB{}, nil)
		require.NotNil(t, s.logger)
	})
}

// setupTestDB opens the integration test database and ensures the schema is
// current. Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test - DATABASE_URL environment variable required")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "Failed to open database connection")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Error closing database connection: %v", err)
		}
	})

	require.NoError(t, db.Ping(), "Failed to ping database")

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, RunMigrations(db, quiet), "Failed to apply migrations")

	return db
}

// beginTestTx starts a transaction that is rolled back when the test ends,
// so integration tests leave no rows behind.
func beginTestTx(t *testing.T, db *sql.DB) *sql.Tx {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")
	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Logf("Error rolling back transaction: %v", err)
		}
	})
	return tx
}

func insertTestCollection(t *testing.T, tx *sql.Tx, learnerID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := tx.Exec(
		`INSERT INTO collections (id, learner_id, name) VALUES ($1, $2, $3)`,
		id, learnerID, "integration test collection",
	)
	require.NoError(t, err, "Failed to insert collection")
	return id
}

func insertTestItem(
	t *testing.T,
	tx *sql.Tx,
	collectionID uuid.UUID,
	tagID *uuid.UUID,
	nextReviewAt sql.NullTime,
	active bool,
) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := tx.Exec(
		`INSERT INTO items (id, collection_id, tag_id, front, back, is_active, next_review_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, collectionID, tagID, "front "+id.String()[:8], "back", active, nextReviewAt,
	)
	require.NoError(t, err, "Failed to insert item")
	return id
}

func dueAt(ts time.Time) sql.NullTime {
	return sql.NullTime{Time: ts, Valid: true}
}

func TestPostgresItemStore_Integration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("FetchDue returns due items in study order", func(t *testing.T) {
		tx := beginTestTx(t, db)
		itemStore := NewPostgresItemStore(tx, nil)

		learnerID := uuid.New()
		collectionID := insertTestCollection(t, tx, learnerID)

		past := time.Now().UTC().Add(-time.Hour)
		future := time.Now().UTC().Add(time.Hour)

		scheduled := insertTestItem(t, tx, collectionID, nil, dueAt(past), true)
		neverReviewed := insertTestItem(t, tx, collectionID, nil, sql.NullTime{}, true)

		// Not yet due and inactive: both excluded.
		insertTestItem(t, tx, collectionID, nil, dueAt(future), true)
		insertTestItem(t, tx, collectionID, nil, dueAt(past), false)

		items, err := itemStore.FetchDue(ctx, learnerID, collectionID, nil, 20)
		require.NoError(t, err)
		require.Len(t, items, 2)

		// Never-reviewed items come first, then ascending due time.
		assert.Equal(t, neverReviewed, items[0].ID)
		assert.Equal(t, scheduled, items[1].ID)
		assert.True(t, items[0].NextReviewAt.IsZero())
	})

	t.Run("FetchDue respects the limit", func(t *testing.T) {
		tx := beginTestTx(t, db)
		itemStore := NewPostgresItemStore(tx, nil)

		learnerID := uuid.New()
		collectionID := insertTestCollection(t, tx, learnerID)
		for i := 0; i < 5; i++ {
			insertTestItem(t, tx, collectionID, nil, sql.NullTime{}, true)
		}

		items, err := itemStore.FetchDue(ctx, learnerID, collectionID, nil, 3)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("FetchDue filters by tag", func(t *testing.T) {
		tx := beginTestTx(t, db)
		itemStore := NewPostgresItemStore(tx, nil)

		learnerID := uuid.New()
		collectionID := insertTestCollection(t, tx, learnerID)
		tagID := uuid.New()

		tagged := insertTestItem(t, tx, collectionID, &tagID, sql.NullTime{}, true)
		insertTestItem(t, tx, collectionID, nil, sql.NullTime{}, true)

		items, err := itemStore.FetchDue(ctx, learnerID, collectionID, &tagID, 20)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, tagged, items[0].ID)
		require.NotNil(t, items[0].TagID)
		assert.Equal(t, tagID, *items[0].TagID)
	})

	t.Run("FetchDue enforces ownership", func(t *testing.T) {
		tx := beginTestTx(t, db)
		itemStore := NewPostgresItemStore(tx, nil)

		ownerID := uuid.New()
		collectionID := insertTestCollection(t, tx, ownerID)

		_, err := itemStore.FetchDue(ctx, uuid.New(), collectionID, nil, 20)
		assert.ErrorIs(t, err, store.ErrAccessDenied)

		_, err = itemStore.FetchDue(ctx, ownerID, uuid.New(), nil, 20)
		assert.ErrorIs(t, err, store.ErrCollectionNotFound)
	})

	t.Run("FetchDue with nothing due returns empty", func(t *testing.T) {
		tx := beginTestTx(t, db)
		itemStore := NewPostgresItemStore(tx, nil)

		learnerID := uuid.New()
		collectionID := insertTestCollection(t, tx, learnerID)
		insertTestItem(t, tx, collectionID, nil, dueAt(time.Now().UTC().Add(time.Hour)), true)

		items, err := itemStore.FetchDue(ctx, learnerID, collectionID, nil, 20)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("GetByID round trip", func(t *testing.T) {
		tx := beginTestTx(t, db)
		itemStore := NewPostgresItemStore(tx, nil)

		learnerID := uuid.New()
		collectionID := insertTestCollection(t, tx, learnerID)
		itemID := insertTestItem(t, tx, collectionID, nil, sql.NullTime{}, true)

		item, err := itemStore.GetByID(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, itemID, item.ID)
		assert.Equal(t, collectionID, item.CollectionID)
		assert.Equal(t, 0, item.ReviewCount)
		assert.True(t, item.LastReviewedAt.IsZero())

		_, err = itemStore.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrItemNotFound)
	})

	t.Run("RecordReview persists the new schedule", func(t *testing.T) {
		tx := beginTestTx(t, db)
		itemStore := NewPostgresItemStore(tx, nil)

		learnerID := uuid.New()
		collectionID := insertTestCollection(t, tx, learnerID)
		itemID := insertTestItem(t, tx, collectionID, nil, sql.NullTime{}, true)

		reviewedAt := time.Now().UTC().Truncate(time.Microsecond)
		nextDue := reviewedAt.Add(24 * time.Hour)

		require.NoError(t, itemStore.RecordReview(ctx, itemID, nextDue, reviewedAt))

		item, err := itemStore.GetByID(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, 1, item.ReviewCount)
		assert.WithinDuration(t, nextDue, item.NextReviewAt, time.Millisecond)
		assert.WithinDuration(t, reviewedAt, item.LastReviewedAt, time.Millisecond)

		// A second review keeps counting up.
		require.NoError(t, itemStore.RecordReview(ctx, itemID, nextDue, reviewedAt))
		item, err = itemStore.GetByID(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, 2, item.ReviewCount)
	})

	t.Run("RecordReview on a missing item", func(t *testing.T) {
		tx := beginTestTx(t, db)
		itemStore := NewPostgresItemStore(tx, nil)

		err := itemStore.RecordReview(ctx, uuid.New(), time.Now().UTC(), time.Now().UTC())
		assert.ErrorIs(t, err, store.ErrItemNotFound)
	})
}
