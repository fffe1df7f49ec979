package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL COLLATE NOCASE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS found_items (
    id          INTEGER PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT,
    category    TEXT NOT NULL,
    location    TEXT NOT NULL,
    date_found  DATETIME NOT NULL,
    status      TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'claimed')),
    finder_id   INTEGER NOT NULL REFERENCES users(id),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_found_items_finder ON found_items(finder_id);

CREATE TABLE IF NOT EXISTS lost_items (
    id          INTEGER PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT,
    category    TEXT NOT NULL,
    location    TEXT NOT NULL,
    date_lost   DATETIME NOT NULL,
    status      TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'resolved')),
    owner_id    INTEGER NOT NULL REFERENCES users(id),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_lost_items_owner ON lost_items(owner_id);

CREATE TABLE IF NOT EXISTS claims (
    id                   INTEGER PRIMARY KEY,
    item_id              INTEGER NOT NULL REFERENCES found_items(id),
    claimant_id          INTEGER NOT NULL REFERENCES users(id),
    purchase_date        TEXT,
    purchase_location    TEXT,
    serial_number        TEXT,
    identifying_features TEXT NOT NULL CHECK (length(trim(identifying_features)) > 0),
    additional_details   TEXT,
    status               TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    decided_at           DATETIME,
    decided_by           INTEGER REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_claims_claimant ON claims(claimant_id);

-- At most one pending claim per (item, claimant).
CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_pending_per_claimant
    ON claims(item_id, claimant_id) WHERE status = 'pending';

-- At most one approved claim per item.
CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_approved_per_item
    ON claims(item_id) WHERE status = 'approved';

CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    claim_id   INTEGER REFERENCES claims(id),
    item_id    INTEGER REFERENCES found_items(id),
    type       TEXT NOT NULL CHECK (type IN ('info', 'success', 'warning', 'error')),
    title      TEXT NOT NULL,
    message    TEXT NOT NULL,
    read       INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
