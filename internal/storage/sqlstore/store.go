// Package sqlstore implements storage.Provider on top of jmoiron/sqlx for SQLite
// (modernc.org/sqlite) and PostgreSQL (lib/pq). Both dialects share one schema
// shape and one set of queries; placeholders are rebound per driver.
package sqlstore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/migration"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/migrations"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(driverSQLite, sqlx.QUESTION)
}

type Store struct {
	driver string
	dsn    string
	db     *sqlx.DB
	// Log receives migration progress messages.
	Log func(string)
}

var _ storage.Provider = (*Store)(nil)

// NewSQLite returns a store backed by the SQLite file at path.
func NewSQLite(path string) *Store {
	return &Store{driver: driverSQLite, dsn: path}
}

// NewPostgres returns a store for connStr. The habitquest schema is added to the
// search path unless one is already given.
func NewPostgres(connStr string) *Store {
	return &Store{driver: driverPostgres, dsn: ensureSearchPath(connStr)}
}

func (s *Store) Init() error {
	if s.driver == driverSQLite {
		if err := os.MkdirAll(filepath.Dir(s.dsn), 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := s.open(); err != nil {
		return err
	}

	if _, err := s.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if s.driver == driverSQLite {
		if _, err := os.Stat(s.dsn); os.IsNotExist(err) {
			return storage.ErrNotInitialized
		}
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}

	db, err := sqlx.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	switch s.driver {
	case driverSQLite:
		// one writer; avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	case driverPostgres:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
			db.Close()
			if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.dsn) {
				return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
			}
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	logger.Debug("Opened database", "driver", s.driver)
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, s.driver)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.driver, err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

// Migrate applies pending schema migrations and returns how many ran.
func (s *Store) Migrate() (int, error) {
	if err := s.open(); err != nil {
		return 0, err
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	logFn := s.Log
	if logFn == nil {
		logFn = func(msg string) { logger.Info(msg) }
	}
	return runner.ApplyMigrations(logFn)
}

// Pending lists the migrations not yet applied and the current schema version.
func (s *Store) Pending() ([]migration.Migration, int, error) {
	if err := s.open(); err != nil {
		return nil, 0, err
	}
	runner, err := s.runner()
	if err != nil {
		return nil, 0, err
	}
	return runner.Pending()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// GetConfigPath returns the database file for SQLite and the connection string for PostgreSQL.
func (s *Store) GetConfigPath() string {
	return s.dsn
}

// IsFile reports whether the store lives in a local file that can be copied.
func (s *Store) IsFile() bool {
	return s.driver == driverSQLite
}

// DB exposes the underlying handle for backups.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) conn() (*sqlx.DB, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	return s.db, nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(fn func(tx *sqlx.Tx) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
