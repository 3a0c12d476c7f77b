package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/bgg-stats/internal/config"
	"github.com/Sternrassler/bgg-stats/pkg/client"
	"github.com/Sternrassler/bgg-stats/pkg/collection"
	"github.com/Sternrassler/bgg-stats/pkg/logging"
	"github.com/Sternrassler/bgg-stats/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
)

// app holds the wired components for one process.
type app struct {
	cfg        *config.Config
	redis      *redis.Client
	bgg        *client.Client
	aggregator *collection.Aggregator
}

// newApp wires pacer, client and aggregator. One pacer serves the whole
// process; with redis enabled it also coordinates with other replicas.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	pacerCfg := ratelimit.Config{Pause: cfg.BGG.RequestPause}
	if cfg.Redis.Enabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}

		slot, err := ratelimit.NewRedisSlot(a.redis, cfg.Redis.LockTTL, logging.NewLogger("pacer"))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create shared pacer slot: %w", err)
		}
		pacerCfg.Shared = slot
	}

	pacer, err := ratelimit.NewPacer(pacerCfg, logging.NewLogger("pacer"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create pacer: %w", err)
	}

	a.bgg, err = client.New(cfg.ClientConfig(), pacer)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create bgg client: %w", err)
	}

	a.aggregator, err = collection.New(a.bgg, cfg.AggregatorConfig())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create aggregator: %w", err)
	}

	return a, nil
}

// Close releases the HTTP and redis connections.
func (a *app) Close() error {
	if a.bgg != nil {
		a.bgg.Close()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
