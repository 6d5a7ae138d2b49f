// Package sqlite provides a SQLite-backed radio storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/louisbranch/radiocontrol/internal/platform/id"
	sqlitemigrate "github.com/louisbranch/radiocontrol/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/radiocontrol/internal/platform/timeouts"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists stations, reviews and change history in SQLite.
type Store struct {
	sqlDB *sql.DB
	db    *sqlx.DB
	now   func() time.Time
	newID func() (string, error)
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the writer clock used for ultimaActualizacion.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the generator used for records added without an id.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite radio store, creating its directory when needed, and
// applies embedded migrations. Failures wrap storage.ErrStorageUnavailable.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: storage path is required", storage.ErrStorageUnavailable)
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create storage dir: %w", storage.ErrStorageUnavailable, err)
		}
	}
	dsn := fmt.Sprintf(
		"%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cleanPath,
		timeouts.StoreBusy.Milliseconds(),
	)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %w", storage.ErrStorageUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.StoreOpen)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %w", storage.ErrStorageUnavailable, err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: run migrations: %w", storage.ErrStorageUnavailable, err)
	}

	store := &Store{
		sqlDB: sqlDB,
		db:    sqlx.NewDb(sqlDB, "sqlite"),
		now:   time.Now,
		newID: id.NewID,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// stamp returns the writer clock truncated to the stored precision.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Store) assignID(current string) (string, error) {
	if current != "" {
		return current, nil
	}
	generated, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return generated, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
