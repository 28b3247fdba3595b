package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/opspilot/platform/internal/database"
)

// migrationsPath returns the migration source URL for a database driver.
func migrationsPath(driver string) (string, error) {
	switch driver {
	case database.DriverPostgres:
		return "file://migrations/postgresql", nil
	case database.DriverMySQL:
		return "file://migrations/mysql", nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// migrateDatabaseURL turns a configured DSN into the URL golang-migrate expects.
// MySQL DSNs in go-sql-driver form gain the mysql:// scheme.
func migrateDatabaseURL(driver, dsn string) string {
	if driver == database.DriverMySQL && !strings.HasPrefix(dsn, "mysql://") {
		return "mysql://" + dsn
	}
	return dsn
}

// RunMigrations applies every pending migration for the configured driver.
// Running it against an up-to-date schema is not an error.
func RunMigrations(logger *slog.Logger, driver, dsn string) error {
	path, err := migrationsPath(driver)
	if err != nil {
		return err
	}

	logger.Info("running database migrations",
		slog.String("driver", driver),
		slog.String("source", path),
	)

	m, err := migrate.New(path, migrateDatabaseURL(driver, dsn))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
