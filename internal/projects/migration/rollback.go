package migration

import (
	"context"
	"fmt"

	"github.com/beachhead-labs/beachhead-backend/internal/logging"
	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

// RollbackResult reports a Rollback run.
type RollbackResult struct {
	Success  bool     `json:"success"`
	Deleted  int64    `json:"deleted"`
	Restored int      `json:"restored"`
	Error    *Failure `json:"error,omitempty"`
}

// Rollback restores the project's assumptions from the backup table and
// clears the migration marker. Steps run in order and the first failure
// aborts the rest:
//
//  1. read backups (none found: nothing is touched)
//  2. delete live assumptions
//  3. insert the backup rows in the live shape
//  4. clear the marker
//
// A failure in step 3 leaves the project with no assumptions while the
// backup rows stay intact; re-running Rollback repairs it.
func (s *Service) Rollback(ctx context.Context, projectID string) RollbackResult {
	log := logging.NewLogger(ctx).With("project_id", projectID)
	var result RollbackResult

	release, lf := s.acquire(ctx, projectID)
	if lf != nil {
		result.Error = lf
		return result
	}
	defer release()

	backups, err := s.store.ListAssumptionBackups(ctx, projectID)
	if err != nil {
		log.LogError("rollback", err)
		result.Error = fetchFailure(err)
		return result
	}
	if len(backups) == 0 {
		result.Error = &Failure{
			Kind:    KindNoBackupFound,
			Message: fmt.Sprintf("no backup found for project %s", projectID),
		}
		log.LogWarn("rollback", result.Error.Message)
		return result
	}

	deleted, err := s.store.DeleteAssumptions(ctx, projectID)
	if err != nil {
		log.LogError("rollback", err)
		result.Error = newFailure(KindDeleteFailure, err)
		return result
	}
	result.Deleted = deleted

	restore := make([]domain.Assumption, 0, len(backups))
	for _, b := range backups {
		restore = append(restore, b.Live())
	}
	if err := s.store.InsertAssumptions(ctx, restore); err != nil {
		log.LogErrorf("rollback", "project left without assumptions, %d backup rows intact: %v", len(backups), err)
		result.Error = newFailure(KindInsertFailure, err)
		return result
	}
	result.Restored = len(restore)

	if err := s.store.SetMigratedAt(ctx, projectID, nil); err != nil {
		log.LogError("rollback", err)
		result.Error = newFailure(KindMarkerWrite, fmt.Errorf("clear migration marker: %w", err))
		return result
	}

	result.Success = true
	log.LogInfof("rollback", "deleted=%d restored=%d", result.Deleted, result.Restored)
	return result
}
