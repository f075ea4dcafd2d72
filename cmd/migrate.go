package cmd

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/codeup/novabook/db"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateStatus   bool
)

const migrationsTable = "schema_migrations"

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print the status of every migration and exit")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	conn, err := goose.OpenDBWithDriver(sqlxDriver, cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName(migrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch {
	case migrateStatus:
		return goose.StatusContext(ctx, conn, db.MigrationsDir)
	case migrateRollback:
		if err := goose.DownContext(ctx, conn, db.MigrationsDir); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
	default:
		if err := goose.UpContext(ctx, conn, db.MigrationsDir); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
	}
	return nil
}
