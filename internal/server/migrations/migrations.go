// Package migrations embeds the goose SQL migrations for every supported
// database dialect.
package migrations

import "embed"

// Postgres holds migrations for the pgx driver, under the "postgres" directory.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds migrations for the modernc sqlite driver, under the "sqlite" directory.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
