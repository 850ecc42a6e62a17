package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jjwprotozoa/dmoc-sub000/modules/manifests/services"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/configuration"
)

// poolMaxConns sizes the pool for one connection per worker plus one for the
// tenant lookup, never below the configured size.
func poolMaxConns(workers int, configured int32) int32 {
	workers = max(0, min(workers, services.MaxWorkers))
	return max(configured, int32(workers)+1)
}

func connectDB(ctx context.Context, conf *configuration.Configuration, workers int) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(conf.Database.Opts)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("db config: %w", err))
	}
	cfg.MaxConns = poolMaxConns(workers, cfg.MaxConns)
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, withCode(exitDB, fmt.Errorf("db connect failed: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, withCode(exitDB, fmt.Errorf("db ping failed: %w", err))
	}
	return pool, nil
}
