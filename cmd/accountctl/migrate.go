package main

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/researchdt/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

type migrator interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations to the account database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, repomanager.NewPostgresRepositoryManager())
		},
	}
}

func runMigrate(cmd *cobra.Command, m migrator) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Println("Connecting to database...")
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	cmd.Println("Running migrations...")
	if err := m.RunMigrations(ctx, db); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
