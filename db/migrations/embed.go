// Package migrations embeds the goose SQL migrations, one directory per
// goose dialect.
package migrations

import "embed"

//go:embed sqlite3/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
