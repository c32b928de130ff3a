// Package migrations holds the trips store schema as goose SQL files:
// trips, their chat messages, and the NOTIFY triggers the live feed listens on.
package migrations

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

// FS is the embedded set of versioned *.sql files.
//
//go:embed *.sql
var FS embed.FS

// NewProvider returns a goose provider that applies FS to the Postgres
// database behind db.
func NewProvider(db *sql.DB, opts ...goose.ProviderOption) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, FS, opts...)
}
