package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beachhead-labs/beachhead-backend/config"
	"github.com/beachhead-labs/beachhead-backend/internal/storage/postgres"
)

type DB struct {
	Pool *pgxpool.Pool
}

// Open creates the pgx pool used for health checks and advisory locks.
func Open(ctx context.Context, dbCfg *config.DatabaseConfig) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(postgres.DSN(dbCfg))
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	maxConns := dbCfg.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	minConns := dbCfg.MinConns
	if minConns < 0 || minConns > maxConns {
		minConns = 0
	}

	cfg.MaxConns = int32(maxConns)
	cfg.MinConns = int32(minConns)
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	// Fail fast
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}
