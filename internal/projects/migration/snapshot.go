package migration

import (
	"context"

	"github.com/beachhead-labs/beachhead-backend/internal/logging"
)

// SnapshotResult reports a Snapshot run.
type SnapshotResult struct {
	Success  bool     `json:"success"`
	BackedUp int64    `json:"backed_up"`
	Error    *Failure `json:"error,omitempty"`
}

// Snapshot appends the project's current assumptions to the backup table,
// stamped with the current time. Earlier generations are kept; Rollback
// restores the newest one per assumption.
func (s *Service) Snapshot(ctx context.Context, projectID string) SnapshotResult {
	log := logging.NewLogger(ctx).With("project_id", projectID)
	var result SnapshotResult

	release, lf := s.acquire(ctx, projectID)
	if lf != nil {
		result.Error = lf
		return result
	}
	defer release()

	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		result.Error = fetchFailure(err)
		return result
	}

	n, err := s.store.SnapshotAssumptions(ctx, projectID, s.timestamp())
	if err != nil {
		log.LogError("snapshot", err)
		result.Error = newFailure(KindSnapshotFailure, err)
		return result
	}

	result.Success = true
	result.BackedUp = n
	log.LogInfof("snapshot", "backed_up=%d", n)
	return result
}
