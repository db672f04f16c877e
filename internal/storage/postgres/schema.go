package postgres

import (
	"context"
	"fmt"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/repository"
)

// schema creates the tables the migration service reads and writes. It is
// only applied to local and test databases; hosted environments own their DDL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id             TEXT PRIMARY KEY,
		user_id        TEXT,
		name           TEXT,
		beachhead_data JSONB,
		v2_migrated_at TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS project_assumptions (
		id               TEXT PRIMARY KEY,
		project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		canvas_area      TEXT NOT NULL,
		statement        TEXT,
		status           TEXT,
		validation_stage INTEGER,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_assumptions_project ON project_assumptions(project_id)`,
	`CREATE TABLE IF NOT EXISTS project_assumptions_backup (
		id               TEXT NOT NULL,
		project_id       TEXT NOT NULL,
		canvas_area      TEXT NOT NULL,
		statement        TEXT,
		status           TEXT,
		validation_stage INTEGER,
		created_at       TIMESTAMPTZ,
		updated_at       TIMESTAMPTZ,
		backed_up_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_assumptions_backup_project ON project_assumptions_backup(project_id, id, backed_up_at DESC)`,
}

// EnsureSchema applies the schema statements in order. Every statement is idempotent.
func EnsureSchema(ctx context.Context, db repository.DBTX) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
