package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/beachhead-labs/beachhead-backend/config"
	"github.com/beachhead-labs/beachhead-backend/internal/db"
	"github.com/beachhead-labs/beachhead-backend/internal/lock"
	"github.com/beachhead-labs/beachhead-backend/internal/logging"
	"github.com/beachhead-labs/beachhead-backend/internal/projects/migration"
	"github.com/beachhead-labs/beachhead-backend/internal/projects/repository"
	"github.com/beachhead-labs/beachhead-backend/internal/storage/postgres"
)

// App holds the process-wide dependencies shared by the API server and the
// migrator CLI.
type App struct {
	Config     *config.Config
	SQL        *sql.DB
	DB         *db.DB
	Migrations *migration.Service

	closers []func() error
}

// NewApp connects to Postgres, builds the lock backend and wires the
// migration service. Callers must Close the App.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewLogger(ctx)
	app := &App{Config: cfg}

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	app.SQL = sqlDB
	app.closers = append(app.closers, sqlDB.Close)

	if !cfg.IsProduction() {
		if err := postgres.EnsureSchema(ctx, sqlDB); err != nil {
			app.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	pool, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("pgx pool: %w", err)
	}
	app.DB = pool
	app.closers = append(app.closers, func() error { pool.Close(); return nil })

	locker, closeLocker, err := lock.New(ctx, cfg, pool.Pool)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("lock backend: %w", err)
	}
	app.closers = append(app.closers, closeLocker)

	opts := []migration.Option{migration.WithSweepRate(cfg.Migration.SweepRate)}
	if locker != nil {
		opts = append(opts, migration.WithLocker(locker))
	}
	app.Migrations = migration.NewService(repository.NewStore(sqlDB), opts...)

	log.LogInfof("bootstrap", "env=%s lock_backend=%s sweep_rate=%.2f/s",
		cfg.App.Environment, cfg.Migration.LockBackend, cfg.Migration.SweepRate)
	return app, nil
}

// Close releases everything NewApp opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logging.Base().Sugar().Warnw("close", "error", err)
		}
	}
	a.closers = nil
}
