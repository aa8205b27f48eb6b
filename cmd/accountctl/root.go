package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/researchdt/internal/server/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var databaseDSN string

// NewRootCmd creates the root command for the admin CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "accountctl",
		Short:         "Administer the researchdt account service",
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&databaseDSN, "dsn", "", "PostgreSQL DSN (defaults to RESEARCHDT_DATABASE_DSN)")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCreateSuperuserCmd())

	return cmd
}

// openDB is a test seam.
var openDB = func(ctx context.Context) (*sql.DB, error) {
	dsn := databaseDSN
	if dsn == "" {
		cfg, err := config.Load(nil)
		if err != nil {
			return nil, err
		}
		dsn = cfg.DatabaseDSN
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db connect error: %w", err)
	}
	return db, nil
}
