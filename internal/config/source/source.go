// Package source implements the pluggable Config Source backends:
// file-backed (yaml, json, toml) and database-backed (postgres,
// sqlite, redis, mongodb, dynamodb).
package source

import (
	"context"

	"github.com/julienandreu/switchboard/internal/config"
)

// Source is the capability set every backend implements: a stable name,
// a full load, and a cheap change check. This is a tagged-interface
// rather than a trait-object hierarchy — a closed, small set of
// backends needs nothing deeper.
type Source interface {
	// Name is a stable identifier such as "yaml", "postgres", "redis".
	Name() string

	// Load reads the raw payload, deserializes and validates it, and
	// returns the resulting Config with its content hash. Load fails
	// with a *config.SourceError tagged with the appropriate ErrorKind.
	Load(ctx context.Context) (*config.Config, config.Version, error)

	// HasChanged reports whether the raw payload's hash differs from
	// current. It never needs to fully parse or validate the payload.
	HasChanged(ctx context.Context, current config.Version) (bool, error)
}
