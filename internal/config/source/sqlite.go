package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/julienandreu/switchboard/internal/config"
)

// SQLiteSource is the embedded-storage counterpart to PostgresSource, for
// single-node deployments with no external database. Uses the pure-Go
// modernc.org/sqlite driver so the binary stays cgo-free.
type SQLiteSource struct {
	db        *sql.DB
	namespace string
}

// NewSQLiteSource opens (creating if absent) the SQLite file at path,
// migrates the config table to its latest schema, and returns a Source
// scoped to namespace.
func NewSQLiteSource(ctx context.Context, path, namespace string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, config.NewSourceError(config.ErrKindIO, "sqlite", err)
	}
	if err := applyMigrations(db, "sqlite3"); err != nil {
		db.Close()
		return nil, config.NewSourceError(config.ErrKindIO, "sqlite", err)
	}
	return &SQLiteSource{db: db, namespace: namespace}, nil
}

func (s *SQLiteSource) Name() string { return "sqlite" }

func (s *SQLiteSource) Close() error { return s.db.Close() }

func (s *SQLiteSource) fetch(ctx context.Context) ([]byte, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT config_json FROM switchboard_config WHERE namespace = ?`, s.namespace,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, config.NewSourceError(config.ErrKindNotFound, "sqlite", fmt.Errorf("namespace %q not found", s.namespace))
	}
	if err != nil {
		return nil, config.NewSourceError(config.ErrKindIO, "sqlite", err)
	}
	return []byte(raw), nil
}

func (s *SQLiteSource) Load(ctx context.Context) (*config.Config, config.Version, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, config.Version{}, err
	}
	return ParseValidateHash(raw, "sqlite")
}

func (s *SQLiteSource) HasChanged(ctx context.Context, current config.Version) (bool, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return false, err
	}
	return !config.HashPayload(raw).Equal(current), nil
}
