package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache implements Cache over a local SQLite file, so cached responses
// survive across invocations. Single-process use only; concurrent processes
// sharing one file are not a supported scenario.
type SQLiteCache struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	key        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);
`

// NewSQLiteCache opens (creating if needed) the cache database at path.
// Parent directories are created as required.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

// Get implements Cache.Get. Expired rows are deleted on access.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT body, expires_at FROM responses WHERE key = ?`, key,
	).Scan(&body, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if time.Now().Unix() >= expiresAt {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM responses WHERE key = ?`, key)
		return nil, false, nil
	}
	return body, true, nil
}

// Set implements Cache.Set, replacing any existing row for the key.
func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Unix()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO responses (key, body, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	return err
}

// Close closes the underlying database. Call during shutdown.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
