package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is one row of the key-value table.
type kvEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     []byte `gorm:"column:entry_value;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// SQLiteStorage stores values in a SQLite table through GORM.
type SQLiteStorage struct {
	db *gorm.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// OpenSQLite opens (or creates) the database file at path. Use ":memory:"
// for a throwaway database.
func OpenSQLite(path string, debug bool) (*SQLiteStorage, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Each connection to ":memory:" opens a separate database.
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return NewSQLiteStorage(db)
}

// NewSQLiteStorage wraps an open GORM connection and migrates the table.
func NewSQLiteStorage(db *gorm.DB) (*SQLiteStorage, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, key string, value []byte) error {
	entry := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var entry kvEntry
	if err := s.db.WithContext(ctx).First(&entry, "entry_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&kvEntry{}, "entry_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&kvEntry{}).Where("entry_key = ?", key).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %q: %w", key, err)
	}
	return count > 0, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
