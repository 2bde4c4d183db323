// Package cache stores parse results in SQLite, keyed by source path and
// content digest, so unchanged files need not be re-encoded.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates no entry matches the requested path and digest.
var ErrNotFound = errors.New("cache entry not found")

// Entry is the cached result of parsing one source file.
type Entry struct {
	Path       string    // absolute source path
	Digest     string    // SourceDigest of the file contents
	TreeHash   string    // hex layout-insensitive tree hash
	Statements int       // top-level statement count
	Tree       []byte    // CBOR-encoded tree
	UpdatedAt  time.Time // set by Store
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries   int
	TreeBytes int64
}

// Cache handles SQLite storage for parse results.
type Cache struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

const schema = `CREATE TABLE IF NOT EXISTS parses (
	path        TEXT PRIMARY KEY,
	digest      TEXT NOT NULL,
	tree_hash   TEXT NOT NULL,
	statements  INTEGER NOT NULL,
	tree        BLOB NOT NULL,
	updated_at  INTEGER NOT NULL
)`

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// SourceDigest returns the hex SHA-256 of source contents.
func SourceDigest(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the entry for path if it was stored for the same digest.
func (c *Cache) Lookup(ctx context.Context, path, digest string) (*Entry, error) {
	var (
		e       Entry
		updated int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT path, digest, tree_hash, statements, tree, updated_at FROM parses WHERE path = ? AND digest = ?",
		path, digest,
	).Scan(&e.Path, &e.Digest, &e.TreeHash, &e.Statements, &e.Tree, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying entry: %w", err)
	}
	e.UpdatedAt = time.Unix(0, updated)
	return &e, nil
}

// Store saves e, replacing any earlier entry for the same path.
func (c *Cache) Store(ctx context.Context, e *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e.UpdatedAt = time.Now()
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO parses (path, digest, tree_hash, statements, tree, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.Path, e.Digest, e.TreeHash, e.Statements, e.Tree, e.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}
	return nil
}

// Delete removes the entry for path.
func (c *Cache) Delete(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.ExecContext(ctx, "DELETE FROM parses WHERE path = ?", path); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

// Prune removes entries last stored before cutoff and reports how many
// were removed.
func (c *Cache) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.ExecContext(ctx, "DELETE FROM parses WHERE updated_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning entries: %w", err)
	}
	return res.RowsAffected()
}

// Paths returns every cached source path, sorted.
func (c *Cache) Paths(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT path FROM parses ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("querying paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scanning path: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// Stats reports the number of entries and the total encoded tree size.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(tree)), 0) FROM parses",
	).Scan(&s.Entries, &s.TreeBytes)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	return s, nil
}
