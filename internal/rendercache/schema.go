// Package rendercache stores rendered report bodies in SQLite, keyed by the
// render environment cache key and the model element they were rendered for.
package rendercache

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/singleflight"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS renders (
	cache_key   TEXT NOT NULL,
	element     TEXT NOT NULL DEFAULT '',
	env_version TEXT NOT NULL,
	html        TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (cache_key, element)
);

CREATE INDEX IF NOT EXISTS idx_renders_env ON renders(env_version);
`

// Cache is a persistent render cache. Concurrent renders of the same entry
// are collapsed into one.
type Cache struct {
	conn   *sql.DB
	group  singleflight.Group
	logger *slog.Logger
}

// Open opens (or creates) the cache database at path and applies the schema.
// An empty path opens a private in-memory database.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	if path == "" {
		dsn = "file::memory:?_busy_timeout=5000"
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("rendercache: open db: %w", err)
	}
	if path == "" {
		// every connection to :memory: is a separate database
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rendercache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rendercache: apply schema: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{conn: conn, logger: logger}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.conn.Close()
}
