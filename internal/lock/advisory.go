package lock

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

// advisoryConn is the part of *pgxpool.Conn the locker uses.
type advisoryConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Release()
}

// AdvisoryLocker uses Postgres session-level advisory locks keyed by the
// 64-bit hashtextextended of the lock key. The lock lives on one pooled
// connection, which stays checked out until release.
type AdvisoryLocker struct {
	acquire func(ctx context.Context) (advisoryConn, error)
}

// NewAdvisoryLocker creates an AdvisoryLocker
func NewAdvisoryLocker(pool *pgxpool.Pool) *AdvisoryLocker {
	return &AdvisoryLocker{
		acquire: func(ctx context.Context) (advisoryConn, error) {
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
	}
}

// Acquire takes the lock or returns domain.ErrLockHeld.
func (l *AdvisoryLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	conn, err := l.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	var ok bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtextextended($1, 0))`, key).Scan(&ok); err != nil {
		conn.Release()
		return nil, fmt.Errorf("try advisory lock %s: %w", key, err)
	}
	if !ok {
		conn.Release()
		return nil, domain.ErrLockHeld
	}

	return func(ctx context.Context) error {
		defer conn.Release()
		var released bool
		if err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, key).Scan(&released); err != nil {
			return fmt.Errorf("advisory unlock %s: %w", key, err)
		}
		if !released {
			return fmt.Errorf("advisory lock %s was not held", key)
		}
		return nil
	}, nil
}
