package testutil

import (
	"context"
	"sync"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

// MemLocker is an in-process lock table keyed by string.
type MemLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	Acquired []string
	Released []string
}

func NewMemLocker() *MemLocker {
	return &MemLocker{held: map[string]bool{}}
}

// Hold marks key as owned by someone else.
func (l *MemLocker) Hold(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = true
}

func (l *MemLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, domain.ErrLockHeld
	}
	l.held[key] = true
	l.Acquired = append(l.Acquired, key)

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.Released = append(l.Released, key)
		return nil
	}, nil
}
