package migrations

import "embed"

// Files contains the session-schema SQL migrations embedded into the
// binary. Migrations are stored flat alongside this package (001_init.sql,
// 002_..., ...) and applied in lexical order by the store.
//
//go:embed *.sql
var Files embed.FS
