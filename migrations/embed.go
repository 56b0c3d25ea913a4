// Package migrations embeds the SQL schema for the registry mirror.
//
// The files are compiled into the binary so the service can migrate its
// database without the SQL present on disk.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file at its root.
//
//go:embed *.sql
var FS embed.FS
