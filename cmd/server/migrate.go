package main

import (
	"fmt"
	"time"

	"github.com/elecmate/commsdesk/internal/auth"
	"github.com/elecmate/commsdesk/internal/config"
	"github.com/elecmate/commsdesk/internal/db"
	"github.com/elecmate/commsdesk/internal/observ"
	"github.com/elecmate/commsdesk/internal/repository/postgres"
	"github.com/elecmate/commsdesk/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	var withSeed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply pending migrations to DATABASE_URL.

With --seed, also load the demo team, jobs and communications. Seeding
skips rows that already exist, so it is safe to run more than once.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrate")
			}

			logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			ctx := cmd.Context()
			database, err := db.New(ctx, cfg.DatabaseURL, logger)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer database.Close()

			if err := database.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if !withSeed {
				return nil
			}

			hash, err := auth.HashPassword(cfg.SeedPassword)
			if err != nil {
				return err
			}
			employees := seed.Employees(hash)
			messages := seed.Messages(time.Now().In(cfg.Location))
			if err := postgres.Seed(ctx, database.Pool(), employees, seed.Jobs(), messages); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			logger.Info("seed data loaded",
				zap.Int("employees", len(employees)),
				zap.Int("messages", len(messages)),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "load demo data after migrating")
	return cmd
}
