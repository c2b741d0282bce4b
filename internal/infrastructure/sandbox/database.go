// Package sandbox provides a local WooCommerce stand-in: a SQLite database
// in the WordPress schema seeded with demo orders, and a server that
// answers the REST routes wooctl uses.
package sandbox

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// DefaultDatabasePath is used when no path is configured
const DefaultDatabasePath = "wooctl-sandbox.db"

// TablePrefix is the table prefix of the sandbox schema
const TablePrefix = "wp_"

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its settings in package state
var gooseMu sync.Mutex

// Init creates or migrates the sandbox database at path. With force, an
// existing file is removed first.
func Init(ctx context.Context, path string, force bool) error {
	if path == "" {
		path = DefaultDatabasePath
	}
	if force {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove existing sandbox: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open sandbox database: %w", err)
	}
	defer func() { _ = db.Close() }()

	return Migrate(ctx, db)
}

// Migrate applies the embedded schema and seed migrations to db
func Migrate(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate sandbox database: %w", err)
	}
	return nil
}

// Version reports the applied migration version of db
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}

// Exists reports whether a sandbox database file is present at path
func Exists(path string) bool {
	if path == "" {
		path = DefaultDatabasePath
	}
	_, err := os.Stat(path)
	return err == nil
}
