package httpcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Entry is one cached HTTP response, keyed by request URL. ETag and
// LastModified hold the validators sent back as If-None-Match and
// If-Modified-Since on revalidation. Link carries the pagination Link
// header: a 304 is not required to repeat it, so the cached value
// stands in when revalidation returns a bare 304.
type Entry struct {
	URL          string `db:"url"`
	ETag         string `db:"etag"`
	LastModified string `db:"last_modified"`
	Link         string `db:"link"`
	Body         []byte `db:"body"`
	FetchedAt    int64  `db:"fetched_at"`
}

// Store is a persistent conditional-request cache backed by SQLite.
// It caches detail GET responses so unchanged resources revalidate with
// a 304 instead of burning rate limit on a full transfer.
type Store struct {
	db *sqlx.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS http_cache (
		url           TEXT PRIMARY KEY,
		etag          TEXT NOT NULL DEFAULT '',
		last_modified TEXT NOT NULL DEFAULT '',
		link          TEXT NOT NULL DEFAULT '',
		body          BLOB NOT NULL,
		fetched_at    INTEGER NOT NULL
	)`

// Open opens (or creates) the cache database at dbPath and ensures the
// schema exists. Use ":memory:" for an ephemeral cache.
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	// WAL keeps concurrent readers cheap while the worker writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	// Cache files written before the link column existed lack it; the
	// ALTER fails harmlessly once the column is there.
	_, _ = db.Exec("ALTER TABLE http_cache ADD COLUMN link TEXT NOT NULL DEFAULT ''")

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached entry for url, or nil if none exists.
func (s *Store) Get(ctx context.Context, url string) (*Entry, error) {
	var e Entry
	err := s.db.GetContext(
		ctx, &e, "SELECT * FROM http_cache WHERE url = ?", url,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry for %s: %w", url, err)
	}
	return &e, nil
}

// Put inserts or replaces the cached entry for e.URL.
func (s *Store) Put(ctx context.Context, e Entry) error {
	if e.FetchedAt == 0 {
		e.FetchedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO http_cache
			(url, etag, last_modified, link, body, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.URL, e.ETag, e.LastModified, e.Link, e.Body, e.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("writing cache entry for %s: %w", e.URL, err)
	}
	return nil
}

// Purge removes entries older than maxAge and returns how many were
// deleted.
func (s *Store) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	res, err := s.db.ExecContext(
		ctx, "DELETE FROM http_cache WHERE fetched_at < ?", cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged rows: %w", err)
	}
	return n, nil
}
