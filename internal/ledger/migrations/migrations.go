// Package migrations embeds the ledger schema migrations run by goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
