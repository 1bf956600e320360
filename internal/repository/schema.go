package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema creates the post meta and option tables. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS post_meta (
	post_id    INTEGER NOT NULL,
	meta_key   TEXT    NOT NULL,
	meta_value TEXT    NOT NULL,
	PRIMARY KEY (post_id, meta_key)
);
CREATE INDEX IF NOT EXISTS idx_post_meta_key ON post_meta (meta_key);
CREATE TABLE IF NOT EXISTS options (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
