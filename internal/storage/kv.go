package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotFound is returned by Get for an unset key.
	ErrKeyNotFound = errors.New("storage: key not found")
	// ErrCapacityExceeded signals that a write was refused for lack of space.
	// It is distinct from every other write failure.
	ErrCapacityExceeded = errors.New("storage: capacity exceeded")
)

// KV is a string-valued key/value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Closer releases a backend. Backends without resources return a no-op.
type Closer func() error

// OpenFile opens one of the file or memory backed drivers. Postgres needs a
// pool and is built with NewPostgresKV instead.
func OpenFile(ctx context.Context, driver, dsn string) (KV, Closer, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemoryKV(), func() error { return nil }, nil
	case DriverBolt:
		kv, err := OpenBoltKV(dsn)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case DriverSQLite:
		kv, err := OpenSQLiteKV(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	default:
		return nil, nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}
}
