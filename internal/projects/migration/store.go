package migration

import (
	"context"
	"time"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
	"github.com/beachhead-labs/beachhead-backend/internal/projects/repository"
)

// Store is the record store the migration service runs against.
// Every method is a single request; none of them span a transaction.
type Store interface {
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	SetMigratedAt(ctx context.Context, projectID string, at *time.Time) error
	ListPendingProjects(ctx context.Context, limit int) ([]string, error)

	CountAssumptions(ctx context.Context, projectID string) (int, error)
	ListAssumptions(ctx context.Context, projectID string) ([]domain.Assumption, error)
	UpdateAssumptionStage(ctx context.Context, id string, stage domain.Stage) error
	DeleteAssumptions(ctx context.Context, projectID string) (int64, error)
	InsertAssumptions(ctx context.Context, rows []domain.Assumption) error

	ListAssumptionBackups(ctx context.Context, projectID string) ([]domain.AssumptionBackup, error)
	SnapshotAssumptions(ctx context.Context, projectID string, at time.Time) (int64, error)
}

var _ Store = (*repository.Store)(nil)

// Locker serializes migration work per project. Acquire returns
// domain.ErrLockHeld when another holder owns the key.
type Locker interface {
	Acquire(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}

func lockKey(projectID string) string {
	return "project-migration:" + projectID
}
