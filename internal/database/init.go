package database

import (
	"fmt"

	"github.com/vimmo/listingrank/internal/config"
)

// InitFromConfig opens the database selected by the storage driver config.
// The memory driver has no database; callers must not reach this for it.
func InitFromConfig(cfg *config.Config) (*DB, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := NewSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite: %w", err)
		}
		return db, nil
	case config.DriverPostgres:
		db, err := NewPostgres(PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("storage driver %q has no database", cfg.Storage.Driver)
	}
}

// RunMigrations runs all pending database migrations
func RunMigrations(db *DB, migrationsPath string) error {
	runner := NewMigrationRunner(db, migrationsPath)
	if err := runner.Run(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationStatus prints the current migration status
func MigrationStatus(db *DB, migrationsPath string) error {
	runner := NewMigrationRunner(db, migrationsPath)
	return runner.Status()
}
