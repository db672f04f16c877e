package migration

import (
	"context"
	"fmt"

	"github.com/beachhead-labs/beachhead-backend/internal/logging"
	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

// MigrationResult reports a Migrate run. Success is true iff Errors is empty.
type MigrationResult struct {
	Success             bool      `json:"success"`
	AssumptionsMigrated int       `json:"assumptions_migrated"`
	Errors              []Failure `json:"errors"`
}

func (r *MigrationResult) fail(f *Failure) {
	r.Errors = append(r.Errors, *f)
}

// Migrate reclassifies every assumption of the project into its canonical
// stage and then sets the migration marker. Rows already on the right stage
// are skipped, so re-running after a partial or full success only repairs
// what is left. A failed row update is recorded and the loop continues; the
// marker write is attempted regardless.
func (s *Service) Migrate(ctx context.Context, projectID string) MigrationResult {
	log := logging.NewLogger(ctx).With("project_id", projectID)
	result := MigrationResult{Errors: []Failure{}}

	release, lf := s.acquire(ctx, projectID)
	if lf != nil {
		result.fail(lf)
		return result
	}
	defer release()

	rows, err := s.store.ListAssumptions(ctx, projectID)
	if err != nil {
		log.LogError("migrate", err)
		result.fail(fetchFailure(err))
		return result
	}

	for _, a := range rows {
		if err := ctx.Err(); err != nil {
			result.fail(newFailure(KindCanceled, err))
			log.LogWarnf("migrate", "stopped after %d updates: %v", result.AssumptionsMigrated, err)
			return result
		}

		target := domain.StageFor(a.CanvasArea)
		if !a.CanvasArea.Known() {
			log.LogInfof("migrate", "assumption=%s unknown canvas area %q, using stage %d", a.ID, a.CanvasArea, target)
		}
		if a.ValidationStage == target {
			continue
		}

		if err := s.store.UpdateAssumptionStage(ctx, a.ID, target); err != nil {
			log.LogErrorf("migrate", "assumption=%s stage %d -> %d: %v", a.ID, a.ValidationStage, target, err)
			f := newFailure(KindRowUpdateFailure, err)
			f.AssumptionID = a.ID
			result.fail(f)
			continue
		}
		result.AssumptionsMigrated++
	}

	now := s.timestamp()
	if err := s.store.SetMigratedAt(ctx, projectID, &now); err != nil {
		log.LogError("migrate", err)
		result.fail(newFailure(KindMarkerWrite, fmt.Errorf("set migration marker: %w", err)))
	}

	result.Success = len(result.Errors) == 0
	log.LogInfof("migrate", "rows=%d updated=%d errors=%d", len(rows), result.AssumptionsMigrated, len(result.Errors))
	return result
}
