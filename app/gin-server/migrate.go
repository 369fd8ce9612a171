package main

import (
	"github.com/spf13/cobra"

	"github.com/yoockh/navai/config"
	"github.com/yoockh/navai/internal/logger"
	"github.com/yoockh/navai/internal/repositories/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the indexes or tables of the configured store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logger.New(cfg.LogLevel)
		ctx := cmd.Context()

		switch cfg.StoreDriver {
		case "postgres":
			db, err := config.NewPostgres(cfg.PostgresURI)
			if err != nil {
				return err
			}
			if err := postgres.AutoMigrate(db); err != nil {
				return err
			}
		default:
			client, err := config.NewMongo(ctx, cfg.MongoURI)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(ctx) }()
			if err := config.EnsureMongoIndexes(ctx, client.Database(cfg.MongoDB)); err != nil {
				return err
			}
		}

		log.WithField("store", cfg.StoreDriver).Info("migration complete")
		return nil
	},
}
