package migration

import (
	"context"
	"time"
)

// Status is the diagnostic view of a project's migration state.
type Status struct {
	NeedsMigration  bool       `json:"needs_migration"`
	MigratedAt      *time.Time `json:"migrated_at"`
	HasBeachhead    bool       `json:"has_beachhead"`
	AssumptionCount int        `json:"assumption_count"`
}

// NeedsMigration reports whether the project still uses the legacy model and
// owns at least one assumption. A migrated project short-circuits without
// touching assumption rows. Errors are *Failure values of kind NotFound or
// FetchFailure.
func (s *Service) NeedsMigration(ctx context.Context, projectID string) (bool, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return false, fetchFailure(err)
	}
	if p.Migrated() {
		return false, nil
	}

	n, err := s.store.CountAssumptions(ctx, projectID)
	if err != nil {
		return false, fetchFailure(err)
	}
	return n > 0, nil
}

// GetMigrationStatus returns the same decision as NeedsMigration together
// with the marker, beachhead presence and assumption count.
func (s *Service) GetMigrationStatus(ctx context.Context, projectID string) (Status, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return Status{}, fetchFailure(err)
	}

	n, err := s.store.CountAssumptions(ctx, projectID)
	if err != nil {
		return Status{}, fetchFailure(err)
	}

	return Status{
		NeedsMigration:  !p.Migrated() && n > 0,
		MigratedAt:      p.MigratedAt,
		HasBeachhead:    p.HasBeachheadData(),
		AssumptionCount: n,
	}, nil
}
