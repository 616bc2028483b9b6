package sqlite

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	chat_id       TEXT NOT NULL DEFAULT '',
	unique_key    TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	photo_service TEXT NOT NULL DEFAULT '',
	photo_target  TEXT NOT NULL DEFAULT '',
	added_by      TEXT NOT NULL DEFAULT '',
	is_chat_admin BOOLEAN NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS chats (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id           TEXT PRIMARY KEY,
	record_id    TEXT NOT NULL,
	seq          INTEGER NOT NULL,
	chat_id      TEXT NOT NULL,
	content      TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT 'text',
	sender       TEXT NOT NULL,
	sender_name  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, id);
`

// Migrate applies the schema. It is safe to run on an existing database.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
