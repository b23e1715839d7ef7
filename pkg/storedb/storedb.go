// Package storedb opens module-scoped sqlite databases and applies
// versioned schema migrations.
package storedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/virtualspace/virtspace/internal/errx"

	_ "modernc.org/sqlite"
)

// Migration is one schema step. Versions are applied in ascending order
// and recorded per module, so multiple modules can share a file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

type OpenOptions struct {
	Path       string
	Module     string
	Migrations []Migration
}

// Open opens (creating if needed) the database at opts.Path and brings
// the module's schema up to the latest migration version.
func Open(opts OpenOptions) (*sql.DB, error) {
	if opts.Path == "" || opts.Module == "" {
		return nil, errx.With(ErrOpen, ": path and module are required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, errx.Wrap(ErrOpen, err)
	}

	db, err := sql.Open("sqlite", opts.Path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errx.Wrap(ErrOpen, err)
	}

	if err := migrate(db, opts.Module, opts.Migrations); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB, module string, migrations []Migration) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  module TEXT NOT NULL,
  version INTEGER NOT NULL,
  name TEXT NOT NULL,
  applied_at TEXT NOT NULL,
  PRIMARY KEY (module, version)
);`)
	if err != nil {
		return errx.Wrap(ErrMigrate, err)
	}

	var current sql.NullInt64
	if err := db.QueryRow(
		`SELECT MAX(version) FROM schema_migrations WHERE module = ?`, module,
	).Scan(&current); err != nil {
		return errx.Wrap(ErrMigrate, err)
	}

	for _, m := range migrations {
		if current.Valid && int64(m.Version) <= current.Int64 {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return errx.Wrap(ErrMigrate, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return errx.With(ErrMigrate, ": %s v%d (%s): %w", module, m.Version, m.Name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (module, version, name, applied_at) VALUES (?, ?, ?, ?)`,
			module, m.Version, m.Name, time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			tx.Rollback()
			return errx.Wrap(ErrMigrate, err)
		}
		if err := tx.Commit(); err != nil {
			return errx.Wrap(ErrMigrate, err)
		}
	}
	return nil
}

// AppliedVersion returns the highest migration version applied for a
// module, or 0 when none were applied.
func AppliedVersion(db *sql.DB, module string) (int, error) {
	var current sql.NullInt64
	err := db.QueryRow(
		`SELECT MAX(version) FROM schema_migrations WHERE module = ?`, module,
	).Scan(&current)
	if err != nil {
		return 0, errx.Wrap(ErrMigrate, fmt.Errorf("read version: %w", err))
	}
	if !current.Valid {
		return 0, nil
	}
	return int(current.Int64), nil
}
