package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/julienandreu/switchboard/internal/config"
)

// PostgresSource is a Config Source backed by a single-row-per-namespace
// table in PostgreSQL, accessed through pgx's pooled driver.
type PostgresSource struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgresSource connects to dsn, migrates the config table to its
// latest schema, and returns a Source scoped to namespace.
func NewPostgresSource(ctx context.Context, dsn, namespace string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, config.NewSourceError(config.ErrKindIO, "postgres", err)
	}

	// goose drives migrations through database/sql, so a short-lived
	// stdlib connection is opened alongside the pgx pool used for the
	// actual reads.
	migrateDB, err := sql.Open("pgx", dsn)
	if err != nil {
		pool.Close()
		return nil, config.NewSourceError(config.ErrKindIO, "postgres", fmt.Errorf("open migration connection: %w", err))
	}
	defer migrateDB.Close()

	if err := applyMigrations(migrateDB, "postgres"); err != nil {
		pool.Close()
		return nil, config.NewSourceError(config.ErrKindIO, "postgres", err)
	}

	return &PostgresSource{pool: pool, namespace: namespace}, nil
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Close() { s.pool.Close() }

func (s *PostgresSource) fetch(ctx context.Context) ([]byte, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT config_json FROM switchboard_config WHERE namespace = $1`, s.namespace,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, config.NewSourceError(config.ErrKindNotFound, "postgres", fmt.Errorf("namespace %q not found", s.namespace))
	}
	if err != nil {
		return nil, config.NewSourceError(config.ErrKindIO, "postgres", err)
	}
	return []byte(raw), nil
}

func (s *PostgresSource) Load(ctx context.Context) (*config.Config, config.Version, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, config.Version{}, err
	}
	return ParseValidateHash(raw, "postgres")
}

func (s *PostgresSource) HasChanged(ctx context.Context, current config.Version) (bool, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return false, err
	}
	return !config.HashPayload(raw).Equal(current), nil
}
