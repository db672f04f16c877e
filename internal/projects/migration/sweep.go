package migration

import (
	"context"

	"github.com/beachhead-labs/beachhead-backend/internal/logging"
)

// SweepReport summarizes a MigrateAll run.
type SweepReport struct {
	Scanned   int                        `json:"scanned"`
	Succeeded int                        `json:"succeeded"`
	Failed    int                        `json:"failed"`
	Results   map[string]MigrationResult `json:"results"`
	Error     *Failure                   `json:"error,omitempty"`
}

// MigrateAll migrates up to limit pending projects one after another,
// throttled by the sweep rate. A project whose lock is held elsewhere counts
// as failed and is picked up by the next sweep.
func (s *Service) MigrateAll(ctx context.Context, limit int) SweepReport {
	log := logging.NewLogger(ctx)
	report := SweepReport{Results: map[string]MigrationResult{}}

	ids, err := s.store.ListPendingProjects(ctx, limit)
	if err != nil {
		log.LogError("sweep", err)
		report.Error = newFailure(KindFetchFailure, err)
		return report
	}
	if len(ids) == 0 {
		log.LogInfo("sweep", "no pending projects")
		return report
	}

	for _, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			report.Error = newFailure(KindCanceled, err)
			break
		}

		res := s.Migrate(ctx, id)
		report.Scanned++
		report.Results[id] = res
		if res.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	log.LogInfof("sweep", "pending=%d scanned=%d succeeded=%d failed=%d", len(ids), report.Scanned, report.Succeeded, report.Failed)
	return report
}
