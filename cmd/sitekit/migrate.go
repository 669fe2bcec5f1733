package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joestump/sitekit/internal/config"
	"github.com/joestump/sitekit/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.HasDB() {
				return fmt.Errorf("SITEKIT_DB_DRIVER and SITEKIT_DB_DSN are required to migrate")
			}
			log := config.NewLogger(cfg.LogLevel)

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			log.Info().Str("driver", cfg.DB.Driver).Msg("migrations complete")
			return nil
		},
	}
}
