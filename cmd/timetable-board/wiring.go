package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-board/internal/handler"
	"github.com/noah-isme/sma-timetable-board/internal/models"
	"github.com/noah-isme/sma-timetable-board/internal/repository"
	"github.com/noah-isme/sma-timetable-board/internal/service"
	"github.com/noah-isme/sma-timetable-board/pkg/cache"
	"github.com/noah-isme/sma-timetable-board/pkg/config"
	"github.com/noah-isme/sma-timetable-board/pkg/database"
	"github.com/noah-isme/sma-timetable-board/pkg/logger"
)

type seedLoader interface {
	Load(ctx context.Context) (*models.Seed, error)
}

// runtime holds the process-wide dependencies shared by every command. Connections open lazily.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	redis  *redis.Client
}

func bootstrap() (*runtime, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &runtime{cfg: cfg, logger: logr}, nil
}

func (rt *runtime) database(ctx context.Context) (*sqlx.DB, error) {
	if rt.db != nil {
		return rt.db, nil
	}
	db, err := database.NewPostgres(ctx, rt.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	rt.db = db
	return db, nil
}

func (rt *runtime) redisClient(ctx context.Context) (*redis.Client, error) {
	if rt.redis != nil {
		return rt.redis, nil
	}
	client, err := cache.NewRedis(ctx, rt.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	rt.redis = client
	return client, nil
}

func (rt *runtime) seedSource(ctx context.Context) (seedLoader, error) {
	t := rt.cfg.Timetable
	switch t.SeedSource {
	case config.SeedSourceFile:
		if t.SeedFile == "" {
			return nil, fmt.Errorf("TIMETABLE_SEED_FILE is required when TIMETABLE_SEED_SOURCE=file")
		}
		return repository.NewFileSeedRepository(t.SeedFile, t.SeedID), nil
	case config.SeedSourceDatabase:
		db, err := rt.database(ctx)
		if err != nil {
			return nil, err
		}
		layout := repository.NewFileSeedRepository(t.SeedFile, t.SeedID)
		return repository.NewDatabaseSeedRepository(layout, repository.NewTimetableSeedRepository(db), t.SeedID), nil
	default:
		return repository.NewFileSeedRepository("", t.SeedID), nil
	}
}

func (rt *runtime) boardStore(ctx context.Context) (service.BoardStore, error) {
	if rt.cfg.Sessions.Store != config.SessionStoreRedis {
		return service.NewMemoryBoardStore(), nil
	}
	client, err := rt.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	return repository.NewBoardCacheRepository(client, rt.logger), nil
}

func (rt *runtime) placement() service.PlacementStrategy {
	if rt.cfg.Timetable.Placement == config.PlacementNearest {
		return service.NearestPlacement{}
	}
	return service.NewRandomPlacement(rt.cfg.Timetable.RandomSeed)
}

func (rt *runtime) readinessChecks() map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{}
	if rt.db != nil {
		checks["postgres"] = rt.db.PingContext
	}
	if rt.redis != nil {
		client := rt.redis
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return checks
}

func (rt *runtime) Close() {
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.logger.Warn("redis close", zap.Error(err))
		}
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.logger.Warn("postgres close", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}
