package main

import (
	"context"
	"fmt"
	"time"

	"github.com/elecmate/commsdesk/internal/auth"
	"github.com/elecmate/commsdesk/internal/config"
	"github.com/elecmate/commsdesk/internal/db"
	"github.com/elecmate/commsdesk/internal/repository"
	"github.com/elecmate/commsdesk/internal/repository/memory"
	"github.com/elecmate/commsdesk/internal/repository/postgres"
	"github.com/elecmate/commsdesk/internal/repository/redisstore"
	"github.com/elecmate/commsdesk/internal/seed"
	"go.uber.org/zap"
)

// backends are the repositories the server runs against.
type backends struct {
	messages    repository.MessageRepository
	overlays    repository.OverlayRepository
	employees   repository.EmployeeRepository
	jobs        repository.JobRepository
	idempotency repository.IdempotencyStore

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends picks Postgres when DATABASE_URL is set and the seeded
// in-memory stores otherwise. Request ids go to Redis when REDIS_URL is set.
func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}

	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		b.closers = append(b.closers, database.Close)

		if err := database.Migrate(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}

		pool := database.Pool()
		b.messages = postgres.NewMessageStore(pool)
		b.overlays = postgres.NewOverlayStore(pool)
		b.employees = postgres.NewEmployeeStore(pool)
		b.jobs = postgres.NewJobStore(pool)
	} else {
		hash, err := auth.HashPassword(cfg.SeedPassword)
		if err != nil {
			return nil, err
		}
		messages, err := memory.NewMessageStore(seed.Messages(time.Now().In(cfg.Location))...)
		if err != nil {
			return nil, fmt.Errorf("seed messages: %w", err)
		}
		b.messages = messages
		b.overlays = memory.NewOverlayStore()
		b.employees = memory.NewEmployeeStore(seed.Employees(hash)...)
		b.jobs = memory.NewJobStore(seed.Jobs()...)
		logger.Warn("DATABASE_URL not set, using in-memory demo data")
	}

	if cfg.RedisURL != "" {
		client, err := db.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.idempotency = redisstore.NewIdempotencyStore(client, cfg.IdempotencyTTL)
	} else {
		b.idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	return b, nil
}
