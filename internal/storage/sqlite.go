package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	email    TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_username_idx ON users (lower(username));
CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (lower(email));
CREATE TABLE IF NOT EXISTS profiles (
	user_id     TEXT PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
	is_employer INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS properties (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	creator_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL,
	output       TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	assignee_id  TEXT,
	owner_id     TEXT NOT NULL,
	is_submitted INTEGER NOT NULL DEFAULT 0,
	is_approved  INTEGER NOT NULL DEFAULT 0,
	is_active    INTEGER NOT NULL DEFAULT 1,
	created_on   TEXT NOT NULL,
	updated_on   TEXT NOT NULL,
	submitted_on TEXT,
	approved_on  TEXT
);
CREATE INDEX IF NOT EXISTS tasks_active_idx ON tasks (is_active);
CREATE INDEX IF NOT EXISTS tasks_assignee_idx ON tasks (assignee_id, status);
CREATE TABLE IF NOT EXISTS task_properties (
	task_id     TEXT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	property_id TEXT NOT NULL REFERENCES properties (id) ON DELETE CASCADE,
	PRIMARY KEY (task_id, property_id)
);
CREATE TABLE IF NOT EXISTS user_interests (
	user_id       TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	property_id   TEXT NOT NULL REFERENCES properties (id) ON DELETE CASCADE,
	is_interested INTEGER NOT NULL,
	PRIMARY KEY (user_id, property_id)
);
CREATE TABLE IF NOT EXISTS user_behaviors (
	user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	task_id TEXT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	is_like INTEGER NOT NULL,
	PRIMARY KEY (user_id, task_id)
);
`

// OpenSQLite opens (creating if needed) the database file at path and applies
// the schema. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLStorage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &SQLStorage{db: sqlConn{db}, dialect: dialectSQLite}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
