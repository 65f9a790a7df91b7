package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	job_title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	full_data TEXT,
	duplicate_group_id TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contact_points (
	id TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	value TEXT NOT NULL,
	label TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS duplicate_groups (
	id TEXT PRIMARY KEY,
	cluster_key TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'unresolved',
	member_count INTEGER NOT NULL DEFAULT 0,
	primary_contact_id TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	resolved_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS excluded_pairs (
	contact_a TEXT NOT NULL,
	contact_b TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (contact_a, contact_b)
);

CREATE INDEX IF NOT EXISTS idx_contacts_duplicate_group ON contacts(duplicate_group_id);
CREATE INDEX IF NOT EXISTS idx_contact_points_contact ON contact_points(contact_id);
CREATE INDEX IF NOT EXISTS idx_contact_points_value ON contact_points(type, value);
CREATE INDEX IF NOT EXISTS idx_duplicate_groups_status ON duplicate_groups(status);
`

// Open opens (creating if needed) the SQLite database at path, applies the
// schema, and returns a ready instance. ":memory:" is supported for tests.
func Open(path string, logger ectologger.Logger) (*DatabaseInstance, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	// The ncruces driver only parses query parameters on file: URIs; on a
	// plain path they would become part of the filename.
	uri := path
	if !strings.HasPrefix(uri, "file:") {
		uri = "file:" + uri
	}
	dsn := uri + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps :memory:
	// databases from resetting per connection.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.WithFields(map[string]any{"path": path}).Debug("Opened database")
	return NewDatabaseInstance(db, logger), nil
}
