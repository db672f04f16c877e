// Package lock provides per-key mutual exclusion across processes for
// migration work.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/beachhead-labs/beachhead-backend/config"
	"github.com/beachhead-labs/beachhead-backend/internal/projects/migration"
)

// New builds the locker selected by cfg.LockBackend. It returns nil for
// "none", leaving the service unguarded. The returned closer releases any
// client the locker owns.
func New(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (migration.Locker, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Migration.LockBackend {
	case config.LockBackendRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisLocker(client, cfg.Migration.LockTTL), client.Close, nil

	case config.LockBackendPostgres:
		if pool == nil {
			return nil, noop, fmt.Errorf("postgres lock backend needs a database pool")
		}
		return NewAdvisoryLocker(pool), noop, nil

	default:
		return nil, noop, nil
	}
}
