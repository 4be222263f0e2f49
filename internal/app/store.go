package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ratemystudyspots/studyspots/internal/config"
	"github.com/ratemystudyspots/studyspots/internal/repository"
	"github.com/ratemystudyspots/studyspots/internal/repository/breaker"
	"github.com/ratemystudyspots/studyspots/internal/repository/memory"
	"github.com/ratemystudyspots/studyspots/internal/repository/postgres"
	redisrepo "github.com/ratemystudyspots/studyspots/internal/repository/redis"
	"github.com/ratemystudyspots/studyspots/pkg/database"
)

// ReviewStore is the configured review backend together with the
// connections it owns.
type ReviewStore struct {
	// Backend is the raw store, used for health checks.
	Backend repository.ReviewRepository
	// Repository is Backend behind the circuit breaker when it is enabled.
	Repository repository.ReviewRepository

	pool   *pgxpool.Pool
	redis  *goredis.Client
	logger *slog.Logger
}

// OpenReviewStore connects the backend selected by cfg.ReviewStore. For
// PostgreSQL it also registers pool metrics and applies pending migrations.
func OpenReviewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ReviewStore, error) {
	s := &ReviewStore{logger: logger}

	switch cfg.ReviewStore {
	case config.StorePostgres:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		s.pool = pool
		logger.Info("connected to PostgreSQL",
			slog.String("host", pgCfg.Host),
			slog.Int("port", pgCfg.Port),
			slog.String("database", pgCfg.DBName),
		)
		database.RegisterPoolMetrics(pool, config.ServiceName)

		if err := database.RunMigrations(ctx, pool, postgres.Migrations(), logger); err != nil {
			s.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		if cfg.SlowQueryThresholdMs > 0 {
			database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)
		}
		s.Backend = postgres.NewReviewRepository(pool)

	case config.StoreRedis:
		redisCfg := cfg.Redis()
		client, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		s.redis = client
		logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))
		s.Backend = redisrepo.NewReviewRepository(client)

	default:
		logger.Warn("using in-memory review store, reviews are lost on restart")
		s.Backend = memory.NewReviewRepository()
	}

	s.Repository = s.Backend
	if cfg.StoreBreakerEnabled {
		s.Repository = breaker.NewReviewRepository(s.Backend, cfg.Breaker(), logger)
	}

	return s, nil
}

// Close releases the connections owned by the store.
func (s *ReviewStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("redis close error", slog.String("error", err.Error()))
			return fmt.Errorf("close redis: %w", err)
		}
	}
	return nil
}
