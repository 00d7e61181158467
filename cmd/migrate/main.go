package main

import (
	"context"
	"flag"
	"os"

	"github.com/Akhileshait/tradenet/internal/bootstrap"
	"github.com/Akhileshait/tradenet/pkg/config"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/migration"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
)

func main() {
	var (
		direction = flag.String("direction", "up", "Migration direction: up or down")
		steps     = flag.Int("steps", 0, "Number of steps to migrate (0 = all)")
		dir       = flag.String("dir", "internal/infrastructure/postgresql/migrations", "Directory holding the *.up.sql and *.down.sql files")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := bootstrap.NewLogger(cfg, "migrate")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pgClient, err := postgresql.NewClient(ctx, cfg.PostgreSQL)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_postgresql"})
		os.Exit(1)
	}
	defer pgClient.Close()

	runner := migration.NewRunner(pgClient, postgresql.NewTransaction(pgClient), log, migration.Config{
		MigrationDir: *dir,
		Schema:       "public",
		TableName:    "schema_migrations",
	})

	if err := runner.EnsureMigrationTable(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "ensure_migration_table"})
		os.Exit(1)
	}

	switch *direction {
	case "up":
		err = runner.MigrateUp(ctx, *steps)
	case "down":
		err = runner.MigrateDown(ctx, *steps)
	default:
		log.Warn("Invalid direction, use 'up' or 'down'", logger.Field{Key: "direction", Value: *direction})
		os.Exit(2)
	}
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "migrate_" + *direction})
		os.Exit(1)
	}

	log.Info("Migration completed successfully", logger.Field{Key: "direction", Value: *direction})
}
