package persistence

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

// RunMigrations brings the schema up to date before the pool is opened.
// migrationsPath is a plain directory path (e.g. migrations/postgres);
// already-applied migrations are a no-op.
func RunMigrations(databaseURL string, migrationsPath string) error {
	if databaseURL == "" {
		return errors.New("database URL is required to run migrations")
	}
	if migrationsPath == "" {
		return errors.New("migrations path is required to run migrations")
	}

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migration source %s: %w", migrationsPath, err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		m.Close() //nolint:errcheck
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if sourceErr, dbErr := m.Close(); sourceErr != nil {
		return fmt.Errorf("migration source close error: %w", sourceErr)
	} else if dbErr != nil {
		return fmt.Errorf("migration database close error: %w", dbErr)
	}

	return nil
}
