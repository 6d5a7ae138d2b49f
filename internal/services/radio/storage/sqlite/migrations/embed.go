package migrations

import "embed"

// FS contains embedded SQLite migrations for radio storage.
//
//go:embed *.sql
var FS embed.FS
