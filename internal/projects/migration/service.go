// Package migration moves projects from the legacy assumption model to the
// V2 three-stage validation model, and back.
//
// Detector reads are pure. Migrate converges row by row and keeps going past
// per-row failures. Rollback runs its destructive steps strictly in order and
// stops at the first failure. None of the operations use a transaction; when a
// Locker is configured, Migrate, Rollback and Snapshot hold a per-project lock
// for their whole duration. Without one, callers must serialize work on a
// project themselves: a Migrate racing a Rollback can interleave row writes.
package migration

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/beachhead-labs/beachhead-backend/internal/logging"
)

// Service runs detection, migration, rollback and snapshot against a Store.
type Service struct {
	store   Store
	locker  Locker
	now     func() time.Time
	limiter *rate.Limiter
}

// Option configures a Service.
type Option func(*Service)

// WithLocker serializes Migrate, Rollback and Snapshot per project.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithClock overrides the time source used for the migration marker and snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSweepRate limits how many projects per second MigrateAll processes.
func WithSweepRate(perSecond float64) Option {
	return func(s *Service) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewService creates a new migration service
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		now:     time.Now,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// acquire takes the per-project lock when a Locker is configured. The
// returned release func is never nil.
func (s *Service) acquire(ctx context.Context, projectID string) (func(), *Failure) {
	if s.locker == nil {
		return func() {}, nil
	}

	unlock, err := s.locker.Acquire(ctx, lockKey(projectID))
	if err != nil {
		return func() {}, lockFailure(err)
	}

	return func() {
		// Release on a fresh context so a canceled request still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := unlock(releaseCtx); err != nil {
			logging.NewLogger(ctx).LogWarnf("release_lock", "project=%s: %v", projectID, err)
		}
	}, nil
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}
