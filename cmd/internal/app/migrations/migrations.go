// Package migrations embeds Gate's SQL schema migrations for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
