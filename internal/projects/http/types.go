package http

import (
	"context"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/migration"
)

// MigrationService is the subset of *migration.Service the handlers use.
type MigrationService interface {
	GetMigrationStatus(ctx context.Context, projectID string) (migration.Status, error)
	Migrate(ctx context.Context, projectID string) migration.MigrationResult
	Rollback(ctx context.Context, projectID string) migration.RollbackResult
	Snapshot(ctx context.Context, projectID string) migration.SnapshotResult
}

var _ MigrationService = (*migration.Service)(nil)

// Handler bundles the dependencies for project migration endpoints.
type Handler struct {
	svc MigrationService
}

func New(svc MigrationService) *Handler {
	return &Handler{svc: svc}
}
