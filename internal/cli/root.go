// Package cli is the operator command line for project migrations.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/migration"
)

// Migrations is the part of *migration.Service the commands drive.
type Migrations interface {
	GetMigrationStatus(ctx context.Context, projectID string) (migration.Status, error)
	Migrate(ctx context.Context, projectID string) migration.MigrationResult
	Rollback(ctx context.Context, projectID string) migration.RollbackResult
	Snapshot(ctx context.Context, projectID string) migration.SnapshotResult
	MigrateAll(ctx context.Context, limit int) migration.SweepReport
}

var _ Migrations = (*migration.Service)(nil)

// App holds what the commands need. SweepLimit and SweepSchedule are the
// defaults for the sweep flags.
type App struct {
	Migrations    Migrations
	SweepLimit    int
	SweepSchedule string
}

// NewRootCmd creates the top-level "migrator" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "migrator",
		Short:         "Inspect, migrate and roll back project assumptions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStatusCmd(app),
		newMigrateCmd(app),
		newRollbackCmd(app),
		newSnapshotCmd(app),
		newSweepCmd(app),
	)

	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
