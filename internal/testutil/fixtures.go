package testutil

import (
	"fmt"
	"time"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

// FixedTime is the reference clock used across tests.
var FixedTime = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

// Clock returns a func that always reports t.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// LegacyProject returns an unmigrated project.
func LegacyProject(id string) domain.Project {
	return domain.Project{
		ID:        id,
		UserID:    "user-" + id,
		Name:      "Project " + id,
		CreatedAt: FixedTime.Add(-72 * time.Hour),
		UpdatedAt: FixedTime.Add(-72 * time.Hour),
	}
}

// MigratedProject returns a project whose marker is already set.
func MigratedProject(id string) domain.Project {
	p := LegacyProject(id)
	at := FixedTime.Add(-time.Hour)
	p.MigratedAt = &at
	return p
}

// LegacyAssumptions builds one assumption per area with an unset stage.
// Ids are "<projectID>-a1", "<projectID>-a2", ...
func LegacyAssumptions(projectID string, areas ...domain.CanvasArea) []domain.Assumption {
	out := make([]domain.Assumption, 0, len(areas))
	for i, area := range areas {
		created := FixedTime.Add(-48 * time.Hour).Add(time.Duration(i) * time.Minute)
		out = append(out, domain.Assumption{
			ID:         fmt.Sprintf("%s-a%d", projectID, i+1),
			ProjectID:  projectID,
			CanvasArea: area,
			Statement:  fmt.Sprintf("assumption about %s", area),
			Status:     "untested",
			CreatedAt:  created,
			UpdatedAt:  created,
		})
	}
	return out
}

// BackupsOf wraps rows as backups taken at the given time.
func BackupsOf(at time.Time, rows ...domain.Assumption) []domain.AssumptionBackup {
	out := make([]domain.AssumptionBackup, 0, len(rows))
	for _, a := range rows {
		out = append(out, domain.AssumptionBackup{Assumption: a, BackedUpAt: at})
	}
	return out
}
