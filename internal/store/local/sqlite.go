// Package local mirrors every collection into a SQLite key-value table so the
// server restarts with the last known state even when the remote store is
// unreachable. One row per collection holds the whole collection as JSON.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"sppg-kitchen-api-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS state (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// Key is the storage key for a collection.
func Key(collection string) string { return "sppg_" + collection }

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (and creates when missing) the SQLite file at path.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("local: open %s: %w", path, err)
	}
	// SQLite serialises writers anyway; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("local: migrate: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put stores v as JSON under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("local: put %s: encode: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO state(key, payload, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("local: put %s: %w", key, err)
	}
	return nil
}

// Get decodes the value under key into dst. It reports false when the key
// has never been written.
func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("local: get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("local: get %s: decode: %w", key, err)
	}
	return true, nil
}

// Mirror returns an observer that writes the collection snapshot after every
// change. Write failures are logged; in-memory state stays authoritative.
func (s *Store) Mirror() store.Observer {
	return store.ObserverFunc(func(ctx context.Context, ev store.Event) {
		if err := s.Put(context.WithoutCancel(ctx), Key(ev.Collection), ev.Snapshot); err != nil {
			s.log.Warn("local mirror write failed",
				zap.String("collection", ev.Collection),
				zap.String("op", string(ev.Op)),
				zap.Error(err))
		}
	})
}

// Load restores repo from its last snapshot and reports how many records
// were found. A collection that was never written leaves repo untouched.
func Load[T store.Entity](ctx context.Context, s *Store, repo *store.Repository[T]) (int, error) {
	var rows []T
	found, err := s.Get(ctx, Key(repo.Name()), &rows)
	if err != nil || !found {
		return 0, err
	}
	repo.Replace(ctx, rows)
	return len(rows), nil
}
