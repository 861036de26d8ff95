// Package migrations embeds the SQL migrations for the postgres document backend.
package migrations

import "embed"

// FS holds every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS
