// Package db opens the site's SQLite database and owns its schema.
package db

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// busyTimeout bounds how long a writer waits on the database lock. Lead
// inserts and flash writes from concurrent requests share one file.
const busyTimeout = 5 * time.Second

// DefaultPath returns ~/.houzzhunt/site.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".houzzhunt", "site.db"), nil
}

// Open opens or creates the site database at path and brings its schema
// up to date. Journal mode, foreign keys and the busy timeout travel in
// the DSN so every pooled connection gets them.
func Open(path string) (*sqlx.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
	}

	conn, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, closeOnErr(conn, fmt.Errorf("connecting to %s: %w", path, err))
	}
	if err := checkPragmas(ctx, conn); err != nil {
		return nil, closeOnErr(conn, err)
	}
	if err := migrate(conn); err != nil {
		return nil, closeOnErr(conn, fmt.Errorf("running migrations: %w", err))
	}

	return conn, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", fmt.Sprint(busyTimeout.Milliseconds()))
	return "file:" + path + "?" + q.Encode()
}

// checkPragmas fails if the driver ignored the DSN settings.
func checkPragmas(ctx context.Context, conn *sqlx.DB) error {
	var mode string
	if err := conn.GetContext(ctx, &mode, "PRAGMA journal_mode"); err != nil {
		return fmt.Errorf("reading journal_mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("journal_mode is %q, want wal", mode)
	}

	var fk int
	if err := conn.GetContext(ctx, &fk, "PRAGMA foreign_keys"); err != nil {
		return fmt.Errorf("reading foreign_keys: %w", err)
	}
	if fk != 1 {
		return fmt.Errorf("foreign keys are disabled")
	}

	return nil
}

func closeOnErr(conn *sqlx.DB, err error) error {
	if closeErr := conn.Close(); closeErr != nil {
		return fmt.Errorf("%w (also failed to close: %v)", err, closeErr)
	}
	return err
}
