// Package migrations compiles the firing history schema into the
// binary. A kiln controller gets copied onto workshop machines as a
// single executable; it cannot assume loose .sql files alongside it.
//
// Importing this package (blank import from main) registers the
// embedded files with the database package, which applies any pending
// ones on startup.
package migrations

import (
	"embed"

	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
