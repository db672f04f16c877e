package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/beachhead-labs/beachhead-backend/internal/logging"
)

func newSweepCmd(app *App) *cobra.Command {
	var limit int
	var schedule string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Migrate every pending project, once or on a cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			if schedule == "" {
				return sweepOnce(cmd.Context(), app, cmd.OutOrStdout(), limit)
			}
			return sweepScheduled(cmd.Context(), app, cmd.OutOrStdout(), limit, schedule)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", app.SweepLimit, "Maximum projects per sweep")
	cmd.Flags().StringVar(&schedule, "schedule", app.SweepSchedule, "Cron expression; run until interrupted")

	return cmd
}

func sweepOnce(ctx context.Context, app *App, out io.Writer, limit int) error {
	report := app.Migrations.MigrateAll(ctx, limit)
	if err := writeJSON(out, report); err != nil {
		return err
	}
	if report.Error != nil {
		return report.Error
	}
	if report.Failed > 0 {
		return fmt.Errorf("sweep: %d of %d project(s) failed", report.Failed, report.Scanned)
	}
	return nil
}

// sweepScheduled blocks until ctx is done. Overlapping ticks are skipped so
// a slow sweep never runs twice at once.
func sweepScheduled(ctx context.Context, app *App, out io.Writer, limit int, schedule string) error {
	log := logging.NewLogger(ctx)

	var mu sync.Mutex
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		report := app.Migrations.MigrateAll(ctx, limit)
		mu.Lock()
		defer mu.Unlock()
		if err := writeJSON(out, report); err != nil {
			log.LogError("sweep", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid --schedule %q: %w", schedule, err)
	}

	log.LogInfof("sweep", "scheduled %q limit=%d", schedule, limit)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
