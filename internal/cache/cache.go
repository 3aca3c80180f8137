// Package cache persists per-file extraction results in SQLite, keyed by
// content hash. A rescan reuses cached extractions for unchanged files and
// only reparses what changed.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/xxh3"

	"github.com/callsight/callsight/internal/source"
)

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	rel_path TEXT PRIMARY KEY,
	hash     TEXT NOT NULL,
	payload  BLOB NOT NULL
);
`

// Cache is one project's extraction store.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path. ":memory:" works for
// throwaway scans.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Hash returns the content hash used as the cache key.
func Hash(data []byte) string {
	return strconv.FormatUint(xxh3.Hash(data), 16)
}

// Get returns the cached extraction for a file iff the stored hash matches
// the current content hash.
func (c *Cache) Get(relPath, hash string) (*source.Extraction, bool, error) {
	var storedHash string
	var payload []byte
	err := c.db.QueryRow(
		"SELECT hash, payload FROM extractions WHERE rel_path = ?", relPath,
	).Scan(&storedHash, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", relPath, err)
	}
	if storedHash != hash {
		return nil, false, nil
	}

	var ex source.Extraction
	if err := json.Unmarshal(payload, &ex); err != nil {
		// A corrupt row behaves like a miss; the file is reparsed.
		return nil, false, nil
	}
	return &ex, true, nil
}

// Put stores or replaces the extraction for a file.
func (c *Cache) Put(relPath, hash string, ex *source.Extraction) error {
	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", relPath, err)
	}
	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO extractions (rel_path, hash, payload) VALUES (?, ?, ?)",
		relPath, hash, payload,
	)
	if err != nil {
		return fmt.Errorf("cache put %s: %w", relPath, err)
	}
	return nil
}

// Prune drops rows for files no longer present in the project.
func (c *Cache) Prune(present map[string]bool) error {
	rows, err := c.db.Query("SELECT rel_path FROM extractions")
	if err != nil {
		return fmt.Errorf("cache prune: %w", err)
	}
	var stale []string
	for rows.Next() {
		var rel string
		if err := rows.Scan(&rel); err != nil {
			rows.Close()
			return fmt.Errorf("cache prune: %w", err)
		}
		if !present[rel] {
			stale = append(stale, rel)
		}
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("cache prune: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	args := make([]any, len(stale))
	for i, rel := range stale {
		args[i] = rel
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(stale)), ",")
	_, err = c.db.Exec("DELETE FROM extractions WHERE rel_path IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("cache prune: %w", err)
	}
	return nil
}
