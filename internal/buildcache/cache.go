// Package buildcache is a content-addressed cache of per-module compile
// results, so a repeat `compile` invocation over an unchanged module can
// skip stages D-H (type parsing through lowering) instead of redoing work
// whose result is already known to be identical; stages A-C still run on
// every compile. A stored entry records only that the module passed, not
// the checked or lowered output itself.
//
// Grounded on github.com/termfx/morfx's internal/db package: a raw
// database/sql handle over SQLite, opened once, with PRAGMAs applied and
// a health check run at open time (termfx-morfx's Open/QuickCheck),
// generalized from morfx's application schema to a single cache-entry
// table. modernc.org/sqlite is used in place of morfx's mattn/go-sqlite3
// (both register a database/sql driver the same way) because it's the
// package funxy itself carries (§11).
package buildcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	_ "modernc.org/sqlite"
)

// Cache wraps a SQLite-backed store of (module name, content hash) ->
// opaque result blob entries. The blob's contents are up to the caller —
// buildcache doesn't know or care what's inside a cached pipeline result,
// the same way a build system's object cache doesn't interpret the
// object files it stores.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) a build cache at path. An empty
// path opens an in-memory cache, useful for tests and for single-shot
// invocations that don't want to touch disk.
func Open(path string) (*Cache, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("buildcache: open %s: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("buildcache: set journal mode: %w", err)
	}
	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			module_name TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			payload BLOB NOT NULL,
			stored_at INTEGER NOT NULL,
			PRIMARY KEY (module_name, content_hash)
		);
	`)
	if err != nil {
		return fmt.Errorf("buildcache: migrate: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Hash returns the content-address for a module's interface and body
// source bytes, as stored/looked-up by moduleName + Hash(iface, body).
// A body-only module (spec §6.2) passes nil for iface.
func Hash(iface, body []byte) string {
	h := sha256.New()
	h.Write(iface)
	h.Write([]byte{0}) // separator: distinguishes ("ab","") from ("a","b")
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached payload for (moduleName, hash), and whether it
// was present.
func (c *Cache) Get(moduleName, hash string) ([]byte, bool, error) {
	var payload []byte
	err := c.db.QueryRow(
		`SELECT payload FROM entries WHERE module_name = ? AND content_hash = ?`,
		moduleName, hash,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("buildcache: get %s: %w", moduleName, err)
	}
	return payload, true, nil
}

// Put stores payload under (moduleName, hash), replacing any prior entry
// for the same key — a module whose source changed and changed back
// produces the same hash and should just overwrite, not accumulate
// duplicate rows.
func (c *Cache) Put(moduleName, hash string, payload []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO entries (module_name, content_hash, payload, stored_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(module_name, content_hash) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at`,
		moduleName, hash, payload, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("buildcache: put %s: %w", moduleName, err)
	}
	return nil
}

// Stats summarizes the cache for --verbose reporting.
type Stats struct {
	Entries   int
	TotalSize int64
}

// String renders s the way a --verbose build-cache report would:
// human-readable byte counts via go-humanize rather than a raw integer.
func (s Stats) String() string {
	return fmt.Sprintf("%d entries, %s", s.Entries, humanize.Bytes(uint64(s.TotalSize)))
}

// Stats reports the number of cached entries and their total payload
// size.
func (c *Cache) Stats() (Stats, error) {
	var stats Stats
	err := c.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(LENGTH(payload)), 0) FROM entries`).
		Scan(&stats.Entries, &stats.TotalSize)
	if err != nil {
		return Stats{}, fmt.Errorf("buildcache: stats: %w", err)
	}
	return stats, nil
}

// Evict removes the cache entry for (moduleName, hash), if present.
// Returns whether a row was actually removed.
func (c *Cache) Evict(moduleName, hash string) (bool, error) {
	res, err := c.db.Exec(
		`DELETE FROM entries WHERE module_name = ? AND content_hash = ?`,
		moduleName, hash,
	)
	if err != nil {
		return false, fmt.Errorf("buildcache: evict %s: %w", moduleName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("buildcache: evict %s: %w", moduleName, err)
	}
	return n > 0, nil
}
