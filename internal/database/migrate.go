package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrDirtyMigration means an earlier migration failed halfway and needs a manual fix
// before the service can start.
var ErrDirtyMigration = errors.New("database schema is dirty")

// RunMigrations applies every pending migration under migrationsPath and returns the
// resulting schema version.
func RunMigrations(databaseURL, migrationsPath string) (uint, error) {
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return 0, fmt.Errorf("resolve migrations path: %w", err)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return 0, fmt.Errorf("open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "rmaflow_schema_migrations"})
	if err != nil {
		return 0, fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(absPath), "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("create migration instance: %w", err)
	}
	defer migrator.Close()

	if _, dirty, err := migrator.Version(); err == nil && dirty {
		return 0, ErrDirtyMigration
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	version, _, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
