// Package store is the durable key/value storage the state layer mirrors its
// records into. Writes are last-write-wins per key.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Storage keys owned by the state layer.
const (
	KeyUser          = "session.user"
	KeyPendingRole   = "session.pending_role"
	KeyNotifications = "notifications.preferences"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrCorrupt       = errors.New("stored record is corrupt")
	ErrUnknownDriver = errors.New("unknown store driver")
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the record stored under key into v. Undecodable data is
// reported as ErrCorrupt, read failures are returned as they are.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}

// Open builds the store named by driver: "sqlite", "postgres", "redis" or "memory".
// dsn is the database DSN for the SQL drivers and the redis URL for "redis".
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return OpenSQL("sqlite", dsn)
	case "postgres":
		return OpenSQL("pgx", dsn)
	case "redis":
		return OpenRedis(dsn)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
