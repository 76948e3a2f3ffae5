// Package config loads the application settings from the environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/example/todo-tracker/modules/storage"
)

// Log levels understood by Load.
const (
	LogLevelInfo  = "info"
	LogLevelError = "error"
)

// jetStreamName matches the names NATS accepts for a KV bucket. The storage
// key doubles as the bucket name on the jetstream backend.
var jetStreamName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Config holds the application configuration.
type Config struct {
	// HTTPAddr is the listen address of the REST API (e.g., ":3000")
	HTTPAddr string

	// Backend selects where the task list is persisted
	Backend storage.Backend

	// StorageKey is the key the task list is stored under
	StorageKey string

	// DBPath is the SQLite database file
	DBPath string

	// DBDebug enables GORM query logging
	DBDebug bool

	// RedisAddr is the Redis server address (e.g., "localhost:6379")
	RedisAddr string

	// RedisPassword is the Redis authentication password (optional)
	RedisPassword string

	// RedisDB is the Redis database number
	RedisDB int

	// RedisPrefix is prepended to every Redis key
	RedisPrefix string

	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string

	// JetStreamDir is the embedded NATS JetStream storage directory
	JetStreamDir string

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration

	// OperationTimeout bounds each task round trip; zero disables it
	OperationTimeout time.Duration

	// ActivityMaxEntries is the number of activity entries kept in memory
	ActivityMaxEntries int

	// LogLevel is "info" or "error"
	LogLevel string
}

// Default returns a config with sensible defaults.
func Default() Config {
	return Config{
		HTTPAddr:           ":3000",
		Backend:            storage.BackendJetStream,
		StorageKey:         "tasks",
		DBPath:             "./tasks.db",
		RedisAddr:          "localhost:6379",
		RedisPrefix:        "todo:",
		JetStreamDir:       "/tmp/todo-tracker-jetstream",
		ShutdownTimeout:    30 * time.Second,
		ActivityMaxEntries: 1000,
		LogLevel:           LogLevelInfo,
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithHTTPAddr sets the API listen address.
func WithHTTPAddr(addr string) Option {
	return func(c *Config) {
		c.HTTPAddr = addr
	}
}

// WithBackend sets the storage backend.
func WithBackend(backend storage.Backend) Option {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithStorageKey sets the key the task list is stored under.
func WithStorageKey(key string) Option {
	return func(c *Config) {
		c.StorageKey = key
	}
}

// WithOperationTimeout sets the per-operation timeout.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.OperationTimeout = d
	}
}

// Load reads the environment on top of Default and then applies opts.
// Malformed numbers and durations keep their defaults.
func Load(opts ...Option) Config {
	cfg := Default()

	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.Backend = storage.Backend(getEnv("STORAGE_BACKEND", string(cfg.Backend)))
	cfg.StorageKey = getEnv("STORAGE_KEY", cfg.StorageKey)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.DBDebug = getEnvBool("DB_DEBUG", cfg.DBDebug)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPrefix = getEnv("REDIS_PREFIX", cfg.RedisPrefix)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JetStreamDir = getEnv("JETSTREAM_DIR", cfg.JetStreamDir)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.OperationTimeout = getEnvDuration("OPERATION_TIMEOUT", cfg.OperationTimeout)
	cfg.ActivityMaxEntries = getEnvInt("ACTIVITY_MAX_ENTRIES", cfg.ActivityMaxEntries)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch c.Backend {
	case storage.BackendJetStream, storage.BackendMemory, storage.BackendSQLite:
	case storage.BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case storage.BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("%w: %q", storage.ErrUnknownBackend, c.Backend)
	}

	if c.StorageKey == "" {
		return fmt.Errorf("STORAGE_KEY must not be empty")
	}
	if c.Backend == storage.BackendJetStream && !jetStreamName.MatchString(c.StorageKey) {
		return fmt.Errorf("STORAGE_KEY %q is not a valid jetstream bucket name (letters, digits, '-' and '_' only)", c.StorageKey)
	}
	if c.LogLevel != LogLevelInfo && c.LogLevel != LogLevelError {
		return fmt.Errorf("unsupported LOG_LEVEL %q", c.LogLevel)
	}
	if c.OperationTimeout < 0 {
		return fmt.Errorf("OPERATION_TIMEOUT must not be negative")
	}
	return nil
}

// StorageConfig returns the settings for the storage plugin.
func (c Config) StorageConfig() storage.Config {
	return storage.Config{
		Backend:       c.Backend,
		SQLitePath:    c.DBPath,
		SQLiteDebug:   c.DBDebug,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   c.RedisPrefix,
		PostgresURL:   c.DatabaseURL,
	}
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
