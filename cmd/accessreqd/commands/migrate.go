package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/internal/logger"
	"github.com/permflow/engine/pkg/catalogue/store"
	"github.com/permflow/engine/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Migrate opens the configured database and brings its schema current.

Against PostgreSQL it first applies the versioned golang-migrate migrations
embedded in pkg/catalogue/store/migrations, then runs GORM AutoMigrate as a
trailing safety net. Against SQLite, AutoMigrate alone owns the schema.
Safe to run repeatedly; it is a no-op against an already-current schema.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("running database migrations", "backend", cfg.Database.Type)

	if cfg.Database.Type == store.DatabaseTypePostgres {
		if err := store.RunMigrations(&cfg.Database.Postgres); err != nil {
			return fmt.Errorf("apply versioned migrations: %w", err)
		}
	}

	cpStore, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open catalogue store: %w", err)
	}
	defer cpStore.Close()

	if _, err := cpStore.ListUsers(context.Background()); err != nil {
		return fmt.Errorf("verify schema after migration: %w", err)
	}

	fmt.Println("Database migrations completed successfully")
	return nil
}
