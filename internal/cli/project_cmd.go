package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <project-id>",
		Short: "Show whether a project needs migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Migrations.GetMigrationStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), st)
		},
	}
}

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <project-id>",
		Short: "Assign validation stages and mark the project migrated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Migrations.Migrate(cmd.Context(), args[0])
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("migrate %s: %d error(s)", args[0], len(res.Errors))
			}
			return nil
		},
	}
}

func newRollbackCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <project-id>",
		Short: "Restore assumptions from the latest backup and clear the marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Migrations.Rollback(cmd.Context(), args[0])
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("rollback %s: %w", args[0], res.Error)
			}
			return nil
		},
	}
}

func newSnapshotCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <project-id>",
		Short: "Copy the project's current assumptions into the backup table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Migrations.Snapshot(cmd.Context(), args[0])
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("snapshot %s: %w", args[0], res.Error)
			}
			return nil
		},
	}
}
