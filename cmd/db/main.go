package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/robalyx/votedentry/cmd/db/commands"
	"github.com/robalyx/votedentry/internal/database"
	"github.com/robalyx/votedentry/internal/database/migrations"
	"github.com/robalyx/votedentry/internal/setup"
	"github.com/robalyx/votedentry/internal/setup/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Setup dependencies
	deps, err := setupDependencies(context.Background())
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	defer deps.DB.Close()

	var cmds []*cli.Command
	cmds = append(cmds, commands.MigrationCommands(deps)...)
	cmds = append(cmds, commands.RecalculateCommands(deps)...)

	app := &cli.Command{
		Name:     "db",
		Usage:    "Database management tool",
		Commands: cmds,
	}

	return app.Run(context.Background(), os.Args)
}

// setupDependencies connects to the database and builds the migrator and engines.
func setupDependencies(ctx context.Context) (*commands.CLIDependencies, error) {
	// Load full configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Create development logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Connect to database
	db, err := database.NewConnection(ctx, &cfg.Common.PostgreSQL, logger, database.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Recalculation never sends notifications
	engines, err := setup.NewEngines(&cfg.Common, db.Store(), nil, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &commands.CLIDependencies{
		DB:       db,
		Migrator: migrate.NewMigrator(db.DB(), migrations.Migrations),
		Engines:  engines,
		Logger:   logger,
	}, nil
}
