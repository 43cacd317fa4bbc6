package sqlite

const schema = `
-- Collections group a learner's items; ownership checks resolve against
-- learner_id here.
CREATE TABLE IF NOT EXISTS collections (
    id TEXT PRIMARY KEY,
    learner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_collections_learner_id ON collections (learner_id);

-- Items carry their own scheduling state; next_review_at is NULL until the
-- first review schedules them.
CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    collection_id TEXT NOT NULL,
    tag_id TEXT,
    front TEXT NOT NULL CHECK (length(front) <= 5000),
    back TEXT NOT NULL CHECK (length(back) <= 5000),
    review_count INTEGER NOT NULL DEFAULT 0 CHECK (review_count >= 0),
    is_active INTEGER NOT NULL DEFAULT 1,
    last_reviewed_at DATETIME,
    next_review_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY(collection_id) REFERENCES collections(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_items_due ON items (collection_id, next_review_at);
`
