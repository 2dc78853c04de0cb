// Package sqlite is the concrete entity store (C1): a single-file
// SQLite database holding projects, features, tasks, dependencies, and
// the role-transition audit log. Grounded on the teacher's database
// bootstrap in internal/db/db.go, adapted to a UUID-keyed schema with
// no content-side tables (sections/notes are out of scope).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a store.Store backed by a SQLite database handle.
type Store struct {
	conn *sql.DB
	db   dbtx
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, letting every query
// method run unmodified whether or not it's inside WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open creates (if needed) and opens the SQLite database at path,
// applies the teacher's pragma set for WAL concurrency and foreign-key
// enforcement, and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}
	if err := configurePragmas(db); err != nil {
		return nil, err
	}
	if err := createSchema(db); err != nil {
		return nil, err
	}
	return &Store{conn: db, db: db}, nil
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA synchronous = NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	summary TEXT,
	status TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);

CREATE TABLE IF NOT EXISTS features (
	id TEXT PRIMARY KEY,
	project_id TEXT,
	slug TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	summary TEXT,
	description TEXT,
	status TEXT NOT NULL,
	priority TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	requires_verification BOOLEAN NOT NULL DEFAULT 0,
	progress_pct REAL NOT NULL DEFAULT 0.0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_features_project_id ON features(project_id);
CREATE INDEX IF NOT EXISTS idx_features_status ON features(status);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	feature_id TEXT,
	slug TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL,
	priority TEXT NOT NULL,
	complexity INTEGER,
	summary TEXT,
	tags TEXT NOT NULL DEFAULT '[]',
	assigned_agent TEXT,
	blocked_reason TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	started_at TIMESTAMP,
	completed_at TIMESTAMP,
	blocked_at TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completion_metadata TEXT,
	context_data TEXT,
	FOREIGN KEY (feature_id) REFERENCES features(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_feature_id ON tasks(feature_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_status_priority ON tasks(status, priority);

CREATE TABLE IF NOT EXISTS dependencies (
	id TEXT PRIMARY KEY,
	from_task_id TEXT NOT NULL,
	to_task_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK (kind IN ('BLOCKS', 'IS_BLOCKED_BY', 'RELATES_TO')),
	unblock_at TEXT CHECK (unblock_at IN ('queue', 'work', 'review', 'terminal') OR unblock_at IS NULL),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(from_task_id, to_task_id, kind),
	FOREIGN KEY (from_task_id) REFERENCES tasks(id) ON DELETE CASCADE,
	FOREIGN KEY (to_task_id) REFERENCES tasks(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_dependencies_from ON dependencies(from_task_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_to ON dependencies(to_task_id);

CREATE TABLE IF NOT EXISTS role_transitions (
	id TEXT PRIMARY KEY,
	entity_id TEXT NOT NULL,
	entity_kind TEXT NOT NULL CHECK (entity_kind IN ('project', 'feature', 'task')),
	from_role TEXT,
	to_role TEXT NOT NULL,
	from_status TEXT,
	to_status TEXT NOT NULL,
	trigger TEXT NOT NULL,
	summary TEXT,
	timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_role_transitions_entity ON role_transitions(entity_id);
`

func createSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: create schema: %w", err)
	}
	return nil
}
