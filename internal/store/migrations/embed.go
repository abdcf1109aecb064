package migrations

import "embed"

// FS holds the SQL migrations for buddy.db.
//
//go:embed *.sql
var FS embed.FS
