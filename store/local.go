package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS rate_cache (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	written_at INTEGER NOT NULL
);`

// Local is the durable on-device tier backed by SQLite. It survives process
// restarts but not device loss; the synced tier covers that.
type Local struct {
	db *sql.DB
}

// OpenLocal opens (creating if necessary) the SQLite-backed local tier at
// path.
func OpenLocal(path string) (*Local, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("local tier path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(localSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Local{db: db}, nil
}

// ID reports the tier identity.
func (l *Local) ID() TierID { return TierLocal }

// Get retrieves the raw record bytes for key.
func (l *Local) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := l.db.QueryRowContext(ctx,
		`SELECT payload FROM rate_cache WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get: %w", err)
	}
	return payload, true, nil
}

// Set stores raw record bytes under key. The local tier ignores ttl; stale
// rows are superseded on write and re-judged for freshness on every read.
func (l *Local) Set(ctx context.Context, key string, val []byte, _ time.Duration) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO rate_cache (key, payload, written_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, written_at = excluded.written_at`,
		key, val, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	return nil
}

// Remove deletes the entry for key.
func (l *Local) Remove(ctx context.Context, key string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM rate_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite remove: %w", err)
	}
	return nil
}

// Close closes the SQLite handle.
func (l *Local) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
