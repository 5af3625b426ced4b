package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
	storage_key VARCHAR(255) PRIMARY KEY,
	value       TEXT NOT NULL,
	updated_at  TIMESTAMP NOT NULL
)`

// SQLStore keeps records in a single kv_store table. It works on both
// Postgres (pgx) and SQLite.
type SQLStore struct {
	DB *sqlx.DB
}

// OpenSQL connects with the given database/sql driver name and creates the
// table if needed.
func OpenSQL(driverName, dsn string) (*SQLStore, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", driverName, err)
	}

	// An in-memory SQLite database only lives as long as its connection.
	if driverName == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create kv_store table: %w", err)
	}

	return &SQLStore{DB: db}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	query := s.DB.Rebind(`SELECT value FROM kv_store WHERE storage_key = ?`)
	if err := s.DB.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	query := s.DB.Rebind(`
		INSERT INTO kv_store (storage_key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (storage_key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if _, err := s.DB.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := s.DB.Rebind(`DELETE FROM kv_store WHERE storage_key = ?`)
	if _, err := s.DB.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.DB.Close()
}
