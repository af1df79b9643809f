// Package migrations embeds the server-side goose migration scripts.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
