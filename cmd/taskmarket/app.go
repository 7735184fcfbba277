package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcliao/taskmarket/internal/cache"
	"github.com/rcliao/taskmarket/internal/config"
	"github.com/rcliao/taskmarket/internal/logging"
	"github.com/rcliao/taskmarket/internal/mcp"
	"github.com/rcliao/taskmarket/internal/metrics"
	"github.com/rcliao/taskmarket/internal/recommend"
	"github.com/rcliao/taskmarket/internal/service"
	"github.com/rcliao/taskmarket/internal/storage"
)

// app is the wired object graph shared by every subcommand.
type app struct {
	storage    storage.Backend
	tasks      *service.TaskService
	properties *service.PropertyService
	users      *service.UserService
	recommend  *service.RecommendService
	server     *mcp.Server

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a := &app{storage: backend}
	a.closers = append(a.closers, backend.Close)

	var sim recommend.Similarity = recommend.CountingSimilarity{Next: recommend.TextSimilarity}
	if cfg.Cache.Enabled {
		pairs, err := a.pairCache(ctx, cfg.Cache)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		sim = recommend.NewCachedSimilarity(sim, pairs)
	}

	ranker := recommend.NewRanker(backend,
		recommend.WithSimilarity(sim),
		recommend.WithWorkers(cfg.Ranking.Workers),
	)

	a.tasks = service.NewTaskService(backend)
	a.properties = service.NewPropertyService(backend)
	a.users = service.NewUserService(backend)
	a.recommend = service.NewRecommendService(ranker, backend, cfg.Ranking.DefaultPageSize, cfg.Ranking.MaxPageSize)
	a.server = mcp.NewServer(a.tasks, a.properties, a.users, a.recommend)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logging.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics server stopped")
			}
		}()
	}

	return a, nil
}

// pairCache layers an in-process cache in front of Redis when one is
// configured. An unreachable Redis is logged and skipped.
func (a *app) pairCache(ctx context.Context, cfg config.CacheConfig) (recommend.PairCache, error) {
	memory, err := cache.NewMemoryCache(cfg.MaxEntries, cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create similarity cache: %w", err)
	}
	a.closers = append(a.closers, memory.Close)

	if cfg.RedisURL == "" {
		return memory, nil
	}

	remote, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.TTL)
	if err != nil {
		logging.Warn().Err(err).Msg("redis similarity cache unavailable, using memory only")
		return memory, nil
	}
	a.closers = append(a.closers, remote.Close)
	return cache.NewTiered(memory, remote), nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
