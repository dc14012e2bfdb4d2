// Package migrations embeds the SQL migration files so the migrate
// command works without the source tree present.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
