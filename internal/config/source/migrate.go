package source

import (
	"database/sql"
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/julienandreu/switchboard/internal/config/source/migrations"
)

// migrateMu serializes goose's process-global dialect and base-fs state
// across the Postgres and SQLite sources — both may be constructed
// concurrently (e.g. from source_builder's backend inference running in
// tests), and goose.SetDialect/SetBaseFS are package-level, not per-call.
var migrateMu sync.Mutex

// applyMigrations brings db up to the latest schema for dialect using
// the embedded migration set that matches it. The two SQL-backed Config
// Sources (Postgres and SQLite) share this one schema-bootstrap path
// instead of each hand-rolling its own CREATE TABLE.
func applyMigrations(db *sql.DB, dialect string) error {
	var fsys fs.FS
	var dir string
	switch dialect {
	case "postgres":
		fsys, dir = migrations.Postgres, "postgres"
	case "sqlite3":
		fsys, dir = migrations.SQLite, "sqlite"
	default:
		return fmt.Errorf("no embedded migrations for dialect %q", dialect)
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect %q: %w", dialect, err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("run %s migrations: %w", dialect, err)
	}
	return nil
}
