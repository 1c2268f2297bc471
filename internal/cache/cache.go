// Package cache implements the CLI-level annotation cache: a
// `--cache-dir` backed sqlite store keyed by a content hash of the source
// file, so repeated CLI invocations on an unchanged file skip
// re-inference. This lives entirely outside the core; Cache never touches
// *ast.Program or solver.Result directly, only the rendered output
// internal/format produces.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache wraps a single sqlite database file holding one table of
// (key, format, payload) rows.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database under dir.
func Open(dir string) (*Cache, error) {
	path := filepath.Join(dir, "flowtype-cache.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS annotations (
		key TEXT NOT NULL,
		format TEXT NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (key, format)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Key derives the cache key for a source file: the hex SHA-256 of its
// bytes. Two files with identical content always share a cache entry
// regardless of path; inference is deterministic on content, so the cache
// never needs to invalidate on anything but a content change.
func Key(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached payload for (key, format), or ("", false) on a
// miss.
func (c *Cache) Get(key, format string) (string, bool) {
	if c == nil || c.db == nil {
		return "", false
	}
	var payload string
	err := c.db.QueryRow(`SELECT payload FROM annotations WHERE key = ? AND format = ?`, key, format).Scan(&payload)
	if err != nil {
		return "", false
	}
	return payload, true
}

// Put stores payload for (key, format), replacing any prior entry.
func (c *Cache) Put(key, format, payload string) error {
	if c == nil || c.db == nil {
		return nil
	}
	_, err := c.db.Exec(`INSERT INTO annotations (key, format, payload) VALUES (?, ?, ?)
		ON CONFLICT (key, format) DO UPDATE SET payload = excluded.payload`, key, format, payload)
	return err
}
