package database

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"sppg-kitchen-api-server/internal/database/migrations"
)

// gooseUp is swapped out in tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// PostgresStore keeps each collection as a table of (id, doc JSONB).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects through the pgx stdlib driver and applies migrations.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("postgres: goose dialect: %w", err)
	}
	if err := gooseUp(ctx, s.db, "."); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Name() string { return "postgres" }

// SelectAll decodes every row of table into dst, a pointer to a slice,
// most recently written first.
func (s *PostgresStore) SelectAll(ctx context.Context, table string, dst any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM "+table+" ORDER BY updated_at DESC")
	if err != nil {
		return fmt.Errorf("postgres: select %s: %w", table, err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return fmt.Errorf("postgres: scan %s: %w", table, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(doc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres: rows %s: %w", table, err)
	}
	buf.WriteByte(']')

	if err := json.Unmarshal(buf.Bytes(), dst); err != nil {
		return fmt.Errorf("postgres: decode %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, table, id string, row any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	doc, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("postgres: encode %s/%s: %w", table, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO "+table+" (id, doc, updated_at) VALUES ($1, $2, now()) "+
			"ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at",
		id, doc)
	if err != nil {
		return fmt.Errorf("postgres: upsert %s/%s: %w", table, id, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id); err != nil {
		return fmt.Errorf("postgres: delete %s/%s: %w", table, id, err)
	}
	return nil
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}
