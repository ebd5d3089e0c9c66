package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openpredict/marketd/internal/aggregate"
	"github.com/openpredict/marketd/internal/cache/memory"
	"github.com/openpredict/marketd/internal/cache/redis"
	"github.com/openpredict/marketd/internal/config"
	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/platform/clob"
	"github.com/openpredict/marketd/internal/platform/data"
	"github.com/openpredict/marketd/internal/platform/gamma"
	"github.com/openpredict/marketd/internal/platform/goldsky"
	"github.com/openpredict/marketd/internal/server"
	"github.com/openpredict/marketd/internal/server/handler"
	"github.com/openpredict/marketd/internal/service"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Wire constructs the full dependency graph from the configuration: upstream
// clients, the response cache backend, aggregators, services, and handlers.
// The returned cleanup function releases resources on shutdown.
func Wire(ctx context.Context, cfg *config.Config) (server.Handlers, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Response cache ---
	var cache domain.ResponseCache
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, cfg.Cache.TTL.Duration, logger)
		if err != nil {
			return server.Handlers{}, nil, fmt.Errorf("wire: redis cache: %w", err)
		}
		closers = append(closers, func() { _ = rc.Close() })
		cache = rc
	default:
		cache = memory.New(cfg.Cache.TTL.Duration, cfg.Cache.MaxEntries)
	}

	// --- Upstream clients ---
	gammaClient := gamma.NewClient(cfg.Gamma.Host)
	clobClient := clob.NewClient(cfg.Clob.Host)
	dataClient := data.NewClient(cfg.Data.Host)
	goldskyClient := goldsky.NewClient(cfg.Goldsky.OrderbookURL, cfg.Goldsky.OpenInterestURL, cfg.Goldsky.APIKey)

	// --- Aggregators ---
	subgraphAgg := aggregate.NewSubgraphAggregator(goldskyClient, cfg.Goldsky.BatchSize, logger)
	profileAgg := aggregate.NewProfileAggregator(dataClient, logger)

	// --- Services ---
	marketSvc := service.NewMarketService(gammaClient, subgraphAgg, cache, logger)
	historySvc := service.NewHistoryService(clobClient, gammaClient, cache, logger)
	profileSvc := service.NewProfileService(profileAgg, cache)
	leaderboardSvc := service.NewLeaderboardService(dataClient, cache)

	handlers := server.Handlers{
		Health:      handler.NewHealthHandler(Version),
		Markets:     handler.NewMarketHandler(marketSvc, logger),
		History:     handler.NewHistoryHandler(historySvc, logger),
		Profiles:    handler.NewProfileHandler(profileSvc, logger),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardSvc, logger),
		Stats:       handler.NewStatsHandler(marketSvc, logger),
	}

	return handlers, cleanup, nil
}
