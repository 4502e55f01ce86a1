// Package migrations embeds the goose migration sets for the
// database-backed Config Source implementations, one directory per
// dialect, so the binary stays self-contained with no separate
// migrations directory to ship alongside it.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
