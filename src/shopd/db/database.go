// Package db provides the settings store for shopd. SQLite runs in memory and
// is persisted to disk on shutdown; PostgreSQL is used as-is.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	apperrors "github.com/megaskyshop/storefront/src/common/errors"
	"github.com/megaskyshop/storefront/src/common/paths"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Database wraps the SQL connection with persistence capabilities
type Database struct {
	db           *sql.DB
	dialect      Dialect
	persistPath  string
	mu           sync.RWMutex
	shutdownOnce sync.Once
}

// Config holds the database configuration
type Config struct {
	// Driver selects the backend: "sqlite" (default) or "postgres"
	Driver string
	// PersistPath is the file the in-memory SQLite database is saved to on shutdown
	PersistPath string
	// LoadOnStart loads PersistPath into memory on startup
	LoadOnStart bool
	// DSN is the PostgreSQL connection string
	DSN string
}

// DefaultConfig returns a default database configuration
func DefaultConfig() Config {
	return Config{
		Driver:      DriverSQLite,
		PersistPath: "~/.shopd/shopd.db",
		LoadOnStart: true,
	}
}

// New opens the database and creates the schema
func New(cfg Config) (*Database, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var conn *sql.DB
	var persistPath string
	switch dialect.Name() {
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, apperrors.ErrDatabaseConnection.WithMessage("database.dsn is required for postgres")
		}
		conn, err = sql.Open(dialect.DriverName(), cfg.DSN)
		if err != nil {
			return nil, apperrors.ErrDatabaseConnection.WithCause(err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, apperrors.ErrDatabaseConnection.WithCause(err)
		}
	default:
		persistPath = paths.Expand(cfg.PersistPath)
		conn, err = sql.Open(dialect.DriverName(), ":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to open in-memory database: %w", err)
		}
		// Every connection to ":memory:" is a separate database
		conn.SetMaxOpenConns(1)
	}

	database := &Database{
		db:          conn,
		dialect:     dialect,
		persistPath: persistPath,
	}

	if err := database.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if cfg.LoadOnStart && persistPath != "" {
		if _, err := os.Stat(persistPath); err == nil {
			if err := database.LoadFromDisk(); err != nil {
				// Start fresh rather than refuse to boot
				fmt.Fprintf(os.Stderr, "warning: failed to load database from disk: %v\n", err)
			}
		}
	}

	return database, nil
}

// initSchema creates the database tables
func (d *Database) initSchema() error {
	_, err := d.db.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// DB returns the underlying sql.DB for direct queries
func (d *Database) DB() *sql.DB {
	return d.db
}

// Dialect returns the active SQL dialect
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// Ping checks the connection
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return apperrors.ErrDatabaseConnection.WithCause(err)
	}
	return nil
}

// Shutdown persists the database to disk and closes the connection
func (d *Database) Shutdown() error {
	var shutdownErr error
	d.shutdownOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		if d.persistPath != "" {
			if err := d.persistToDisk(); err != nil {
				shutdownErr = fmt.Errorf("failed to persist database: %w", err)
			}
		}

		if err := d.db.Close(); err != nil {
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("failed to close database: %w", err))
		}
	})
	return shutdownErr
}

// persistToDisk writes the in-memory database to a temp file next to
// persistPath and renames it into place
func (d *Database) persistToDisk() error {
	if d.persistPath == "" {
		return nil
	}

	dir := filepath.Dir(d.persistPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempPath := d.persistPath + ".tmp"
	os.Remove(tempPath)

	if _, err := d.db.Exec("VACUUM INTO ?", tempPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to vacuum database to disk: %w", err)
	}

	if err := os.Rename(tempPath, d.persistPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename database file: %w", err)
	}
	return nil
}

// LoadFromDisk copies the persisted settings into the in-memory database
func (d *Database) LoadFromDisk() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.persistPath == "" {
		return nil
	}

	if _, err := d.db.Exec("ATTACH DATABASE ? AS disk_db", d.persistPath); err != nil {
		return fmt.Errorf("failed to attach disk database: %w", err)
	}
	defer d.db.Exec("DETACH DATABASE disk_db")

	var count int
	if err := d.db.QueryRow(`
		SELECT COUNT(*) FROM disk_db.sqlite_master
		WHERE type='table' AND name='settings'
	`).Scan(&count); err != nil || count == 0 {
		return err
	}

	if _, err := d.db.Exec(`
		INSERT OR REPLACE INTO settings (key, value, created_at, updated_at)
		SELECT key, value, created_at, updated_at FROM disk_db.settings
	`); err != nil {
		return fmt.Errorf("failed to copy settings: %w", err)
	}
	return nil
}

// SaveToDisk manually triggers a save to disk (for periodic backups)
func (d *Database) SaveToDisk() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.persistToDisk()
}
