package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"timed-quiz/internal/config"
	"timed-quiz/internal/infra/postgres"
	rediscache "timed-quiz/internal/infra/redis"
	"timed-quiz/internal/logging"
)

// NewSeedCmd replaces the stored questions with the sample set.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace stored questions with the sample set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config) error {
	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := runMigrations(ctx, cfg, log); err != nil {
		return err
	}

	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	n, err := postgres.Seed(ctx, db, postgres.SampleQuestions())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.WithField("count", n).Info("seeded quiz questions")

	// Cached sets would otherwise be served until they expire.
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		if err := rediscache.NewQuestionRepository(client, nil, 0).Invalidate(ctx); err != nil {
			log.WithError(err).Warn("could not invalidate cached questions")
		}
	}
	return nil
}
