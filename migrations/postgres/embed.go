// Package migrations embebe los archivos SQL del esquema de Postgres.
// Se aplican en orden lexicográfico; cada archivo debe ser idempotente.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
