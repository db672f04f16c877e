package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
	"github.com/beachhead-labs/beachhead-backend/internal/projects/migration"
	"github.com/beachhead-labs/beachhead-backend/internal/testutil"
)

// testApp wires an App backed by the in-memory store.
func testApp(t *testing.T) (*App, *testutil.MemStore) {
	t.Helper()

	store := testutil.NewMemStore()
	store.PutProject(testutil.LegacyProject("p1"))
	store.PutAssumptions(testutil.LegacyAssumptions("p1", domain.AreaProblem, domain.AreaSolution)...)

	svc := migration.NewService(store, migration.WithClock(testutil.Clock(testutil.FixedTime)))
	return &App{Migrations: svc, SweepLimit: 10}, store
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, ctx context.Context, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return buf.String(), err
}

func TestStatusCmd(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, context.Background(), app, "status", "p1")
	require.NoError(t, err)

	var st migration.Status
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.True(t, st.NeedsMigration)
	assert.Equal(t, 2, st.AssumptionCount)

	_, err = executeCmd(t, context.Background(), app, "status", "ghost")
	assert.True(t, migration.IsKind(err, migration.KindNotFound))
}

func TestStatusCmd_RequiresProjectID(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, context.Background(), app, "status")
	assert.Error(t, err)
}

func TestMigrateCmd(t *testing.T) {
	app, store := testApp(t)

	out, err := executeCmd(t, context.Background(), app, "migrate", "p1")
	require.NoError(t, err)

	var res migration.MigrationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.AssumptionsMigrated)

	p, _ := store.Project("p1")
	assert.NotNil(t, p.MigratedAt)
}

func TestMigrateCmd_ReportsFailure(t *testing.T) {
	app, store := testApp(t)
	store.FailUpdateFor["p1-a1"] = errors.New("row locked")

	out, err := executeCmd(t, context.Background(), app, "migrate", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error(s)")

	var res migration.MigrationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Success)
}

func TestSnapshotThenRollbackCmd(t *testing.T) {
	app, store := testApp(t)
	original := store.Assumptions("p1")

	_, err := executeCmd(t, context.Background(), app, "snapshot", "p1")
	require.NoError(t, err)
	_, err = executeCmd(t, context.Background(), app, "migrate", "p1")
	require.NoError(t, err)

	out, err := executeCmd(t, context.Background(), app, "rollback", "p1")
	require.NoError(t, err)

	var res migration.RollbackResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Restored)
	assert.ElementsMatch(t, original, store.Assumptions("p1"))
}

func TestRollbackCmd_NoBackup(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, context.Background(), app, "rollback", "p1")
	assert.True(t, migration.IsKind(err, migration.KindNoBackupFound))
}

func TestSweepCmd(t *testing.T) {
	t.Run("once", func(t *testing.T) {
		app, store := testApp(t)
		store.PutProject(testutil.LegacyProject("p2"))
		store.PutAssumptions(testutil.LegacyAssumptions("p2", domain.AreaKeyMetrics)...)

		out, err := executeCmd(t, context.Background(), app, "sweep", "--limit", "5")
		require.NoError(t, err)

		var report migration.SweepReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, 2, report.Scanned)
		assert.Equal(t, 2, report.Succeeded)
	})

	t.Run("invalid limit", func(t *testing.T) {
		app, _ := testApp(t)
		_, err := executeCmd(t, context.Background(), app, "sweep", "--limit", "0")
		assert.ErrorContains(t, err, "--limit")
	})

	t.Run("invalid schedule", func(t *testing.T) {
		app, _ := testApp(t)
		_, err := executeCmd(t, context.Background(), app, "sweep", "--schedule", "every tuesday")
		assert.ErrorContains(t, err, "invalid --schedule")
	})

	t.Run("scheduled stops with the context", func(t *testing.T) {
		app, _ := testApp(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := executeCmd(t, ctx, app, "sweep", "--schedule", "@every 1h")
		assert.NoError(t, err)
	})
}
