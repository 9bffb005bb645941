// Package migrations embeds the SQL migrations of the database schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
