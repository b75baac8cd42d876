package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/permflow/engine/internal/logger"
	"github.com/permflow/engine/pkg/catalogue/store/migrations"
)

const migrationsTable = "schema_migrations"

// RunMigrations applies the versioned PostgreSQL migrations over its own
// database/sql connection. It is the explicit-schema counterpart to GORM
// AutoMigrate; New still runs AutoMigrate every time a store is opened.
func RunMigrations(cfg *PostgresConfig) error {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("open postgres connection: %w", err)
	}
	defer db.Close()

	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{
		MigrationsTable: migrationsTable,
		DatabaseName:    cfg.Database,
	})
	if err != nil {
		return fmt.Errorf("build migration driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("build migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		logger.Warn("database is in a dirty migration state", "version", version)
	} else {
		logger.Info("database schema up to date", "version", version)
	}

	return nil
}
