// Package store persists trusts, transactions, meetings and users through gorm.
// It speaks PostgreSQL in production and SQLite for local use and tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trusttracker/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Store wraps the gorm handle. It is safe for concurrent use.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Options tune Open. The zero value logs SQL warnings only.
type Options struct {
	Debug  bool
	Logger *slog.Logger
}

// Open connects to the database named by dsn. A postgres:// URL or a
// key=value DSN containing host= selects PostgreSQL; anything else is
// treated as an SQLite file path (an optional sqlite:// prefix is stripped).
func Open(dsn string, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	level := logger.Warn
	if opts.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	dialector, kind := dialectorFor(dsn)
	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", kind, err)
	}
	if kind == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
		}
		// SQLite only supports one writer at a time
		sqlDB.SetMaxOpenConns(1)
	}
	log.Debug("database opened", "driver", kind)
	return &Store{db: db, log: log}, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string) {
	d := strings.TrimSpace(dsn)
	if strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") || strings.Contains(d, "host=") {
		return postgres.Open(d), "postgres"
	}
	d = strings.TrimPrefix(d, "sqlite://")
	sep := "?"
	if strings.Contains(d, "?") {
		sep = "&"
	}
	return sqlite.Open(d + sep + "_foreign_keys=on&_busy_timeout=5000"), "sqlite"
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// allModels lists the schema in dependency order.
func allModels() []any {
	return []any{&models.User{}, &models.Trust{}, &models.Transaction{}, &models.Meeting{}}
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	// Migrate models individually so the failing table is named in the error
	for _, m := range allModels() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}

// Reset drops every table and recreates the schema.
func (s *Store) Reset(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	ms := allModels()
	for i := len(ms) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(ms[i]); err != nil {
			return fmt.Errorf("drop %T: %w", ms[i], err)
		}
	}
	s.log.Info("database reset")
	return s.Migrate(ctx)
}

// isUniqueConstraintError catches unique violations from drivers that
// gorm's TranslateError does not cover.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "UNIQUE constraint failed") || strings.Contains(s, "unique constraint")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
