// Package migrations embeds the versioned SQL migrations for the
// PostgreSQL backend. See store.RunMigrations for how they are applied.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
