// Package migrate applies the embedded schema migrations with golang-migrate.
package migrate

import (
	"errors"
	"fmt"

	"dayplanner-backend/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange reports that the schema is already at the requested version.
var ErrNoChange = migrate.ErrNoChange

// Run walks the embedded migrations in the given direction ("up" or "down")
// against the database at dsn. A no-op run returns ErrNoChange.
func Run(dsn, direction string) error {
	if dsn == "" {
		return errors.New("database DSN is empty")
	}

	src, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	var step func() error
	switch direction {
	case "up":
		step = m.Up
	case "down":
		step = m.Down
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	return step()
}
