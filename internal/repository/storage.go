package repository

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/vimmo/listingrank/internal/config"
	"github.com/vimmo/listingrank/internal/database"
)

// OpenFromConfig builds the repository set for the configured storage driver
// and returns it with a close function. The memory driver is seeded with the
// demo data set; SQL drivers get their migrations applied.
func OpenFromConfig(cfg *config.Config, migrationsDir string) (*Repositories, func() error, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		m := NewMemory()
		m.SeedDemo(time.Now().UTC())
		return NewMemoryRepositories(m), func() error { return nil }, nil
	}

	db, err := database.InitFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := database.RunMigrations(db, filepath.Join(migrationsDir, db.Driver)); err != nil {
		db.Close()
		return nil, nil, err
	}

	switch db.Driver {
	case "postgres":
		return NewPostgres(db), db.Close, nil
	case "sqlite":
		return NewSQLite(db), db.Close, nil
	default:
		db.Close()
		return nil, nil, fmt.Errorf("unknown database driver: %s", db.Driver)
	}
}
