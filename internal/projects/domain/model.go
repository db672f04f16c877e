package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Project represents a single venture workspace owned by a user.
// It is intentionally storage-agnostic and used across repository, migration and HTTP layers.
type Project struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	BeachheadData json.RawMessage `json:"beachhead_data,omitempty"`
	// MigratedAt is the V2 migration marker. Nil means the project still uses the legacy model.
	MigratedAt *time.Time `json:"v2_migrated_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HasBeachheadData reports whether the structured beachhead payload is present.
func (p Project) HasBeachheadData() bool {
	trimmed := bytes.TrimSpace(p.BeachheadData)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Migrated reports whether the V2 migration marker is set.
func (p Project) Migrated() bool {
	return p.MigratedAt != nil
}

// Assumption is one user-authored hypothesis attached to a project.
type Assumption struct {
	ID              string     `json:"id"`
	ProjectID       string     `json:"project_id"`
	CanvasArea      CanvasArea `json:"canvas_area"`
	Statement       string     `json:"statement"`
	Status          string     `json:"status"`
	ValidationStage Stage      `json:"validation_stage"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AssumptionBackup is a point-in-time copy of an assumption row.
type AssumptionBackup struct {
	Assumption
	BackedUpAt time.Time `json:"backed_up_at"`
}

// Live returns the backed-up row in the live table's shape.
func (b AssumptionBackup) Live() Assumption {
	return b.Assumption
}
