package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	email    TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_username_idx ON users (lower(username));
CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (lower(email));
CREATE TABLE IF NOT EXISTS profiles (
	user_id     TEXT PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
	is_employer BOOLEAN NOT NULL
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
	is_submitted BOOLEAN NOT NULL DEFAULT FALSE,
	is_approved  BOOLEAN NOT NULL DEFAULT FALSE,
	is_active    BOOLEAN NOT NULL DEFAULT TRUE,
	created_on   TIMESTAMPTZ NOT NULL,
	updated_on   TIMESTAMPTZ NOT NULL,
	submitted_on TIMESTAMPTZ,
	approved_on  TIMESTAMPTZ
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
	is_interested BOOLEAN NOT NULL,
	PRIMARY KEY (user_id, property_id)
);
CREATE TABLE IF NOT EXISTS user_behaviors (
	user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	task_id TEXT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	is_like BOOLEAN NOT NULL,
	PRIMARY KEY (user_id, task_id)
);
`

// OpenPostgres connects a pgx pool to url and applies the schema.
func OpenPostgres(ctx context.Context, url string, maxConns int) (*SQLStorage, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is required for PostgreSQL")
	}

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	s := &SQLStorage{db: pgxConn{pool}, dialect: dialectPostgres}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}
