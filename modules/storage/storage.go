// Package storage provides the key-value persistence port used by the task
// repository, with interchangeable backends.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Storage is a key-value store for serialized records.
type Storage interface {
	// Save writes value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error
	// Load returns the value under key. found is false when the key is absent.
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether key holds a value.
	Exists(ctx context.Context, key string) (bool, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the backend's resources.
	Close() error
}

// Backend names a storage implementation.
type Backend string

const (
	BackendMemory    Backend = "memory"
	BackendSQLite    Backend = "sqlite"
	BackendRedis     Backend = "redis"
	BackendPostgres  Backend = "postgres"
	BackendJetStream Backend = "jetstream"
)

// ErrUnknownBackend is returned for a backend name Open does not know.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Config selects and configures a backend.
type Config struct {
	Backend Backend

	SQLitePath  string
	SQLiteDebug bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	PostgresURL string
}

// Open connects to the configured backend. JetStream storage is bound to a
// kv-jetstream bucket instead, see NewKVStorage.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite:
		return OpenSQLite(cfg.SQLitePath, cfg.SQLiteDebug)
	case BackendRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	case BackendPostgres:
		return OpenPostgres(ctx, cfg.PostgresURL)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}
