package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
	"github.com/beachhead-labs/beachhead-backend/internal/testutil"
)

// migratedWithBackups builds a migrated project whose pre-migration rows sit in the backup table.
func migratedWithBackups(projectID string) (*testutil.MemStore, []domain.Assumption) {
	store := testutil.NewMemStore()
	store.PutProject(testutil.MigratedProject(projectID))

	original := testutil.LegacyAssumptions(projectID, domain.AreaProblem, domain.AreaSolution, domain.AreaKeyMetrics)
	store.PutBackups(testutil.BackupsOf(testutil.FixedTime.Add(-2*time.Hour), original...)...)

	live := make([]domain.Assumption, len(original))
	copy(live, original)
	for i := range live {
		live[i].ValidationStage = domain.StageFor(live[i].CanvasArea)
	}
	store.PutAssumptions(live...)
	return store, original
}

func TestRollback_RoundTrip(t *testing.T) {
	store, original := migratedWithBackups("p1")

	res := NewService(store).Rollback(context.Background(), "p1")

	require.True(t, res.Success, "%+v", res.Error)
	assert.Nil(t, res.Error)
	assert.Equal(t, int64(3), res.Deleted)
	assert.Equal(t, 3, res.Restored)

	got := store.Assumptions("p1")
	assert.ElementsMatch(t, original, got)

	p, _ := store.Project("p1")
	assert.Nil(t, p.MigratedAt)

	needs, err := NewService(store).NeedsMigration(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestRollback_RestoresLatestGeneration(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutProject(testutil.MigratedProject("p1"))

	older := testutil.LegacyAssumptions("p1", domain.AreaProblem)
	newer := testutil.LegacyAssumptions("p1", domain.AreaProblem)
	newer[0].Statement = "edited before migration"
	store.PutBackups(testutil.BackupsOf(testutil.FixedTime.Add(-5*time.Hour), older...)...)
	store.PutBackups(testutil.BackupsOf(testutil.FixedTime.Add(-1*time.Hour), newer...)...)

	res := NewService(store).Rollback(context.Background(), "p1")

	require.True(t, res.Success)
	got := store.Assumptions("p1")
	require.Len(t, got, 1)
	assert.Equal(t, "edited before migration", got[0].Statement)
}

func TestRollback_DoesNotResurrectRowsDroppedBetweenSnapshots(t *testing.T) {
	store := testutil.NewMemStore()
	store.PutProject(testutil.MigratedProject("p1"))

	both := testutil.LegacyAssumptions("p1", domain.AreaProblem, domain.AreaSolution)
	store.PutBackups(testutil.BackupsOf(testutil.FixedTime.Add(-5*time.Hour), both...)...)
	store.PutBackups(testutil.BackupsOf(testutil.FixedTime.Add(-1*time.Hour), both[0])...)
	store.PutAssumptions(both[0])

	res := NewService(store).Rollback(context.Background(), "p1")

	require.True(t, res.Success, "%+v", res.Error)
	assert.Equal(t, 1, res.Restored)
	got := store.Assumptions("p1")
	require.Len(t, got, 1)
	assert.Equal(t, "p1-a1", got[0].ID)
}

func TestRollback_NoBackupFound(t *testing.T) {
	store := newLegacyStore("p1", domain.AreaProblem, domain.AreaChannels)
	before := store.Assumptions("p1")

	res := NewService(store).Rollback(context.Background(), "p1")

	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, KindNoBackupFound, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "no backup")
	assert.Equal(t, 0, store.Calls("DeleteAssumptions"))
	assert.Equal(t, before, store.Assumptions("p1"))
}

func TestRollback_StepFailuresAbort(t *testing.T) {
	ctx := context.Background()

	t.Run("backup read failure", func(t *testing.T) {
		store, _ := migratedWithBackups("p1")
		store.FailOn["ListAssumptionBackups"] = errors.New("relation does not exist")

		res := NewService(store).Rollback(ctx, "p1")

		assert.False(t, res.Success)
		assert.Equal(t, KindFetchFailure, res.Error.Kind)
		assert.Equal(t, 0, store.Calls("DeleteAssumptions"))
	})

	t.Run("delete failure leaves everything in place", func(t *testing.T) {
		store, _ := migratedWithBackups("p1")
		before := store.Assumptions("p1")
		store.FailOn["DeleteAssumptions"] = errors.New("foreign key violation")

		res := NewService(store).Rollback(ctx, "p1")

		assert.False(t, res.Success)
		assert.Equal(t, KindDeleteFailure, res.Error.Kind)
		assert.Equal(t, 0, store.Calls("InsertAssumptions"))
		assert.Equal(t, 0, store.Calls("SetMigratedAt"))
		assert.Equal(t, before, store.Assumptions("p1"))
		p, _ := store.Project("p1")
		assert.NotNil(t, p.MigratedAt)
	})

	t.Run("insert failure leaves project empty with backups intact", func(t *testing.T) {
		store, original := migratedWithBackups("p1")
		store.FailOn["InsertAssumptions"] = errors.New("disk full")

		res := NewService(store).Rollback(ctx, "p1")

		assert.False(t, res.Success)
		assert.Equal(t, KindInsertFailure, res.Error.Kind)
		assert.Equal(t, int64(3), res.Deleted)
		assert.Equal(t, 0, res.Restored)
		assert.Empty(t, store.Assumptions("p1"))
		assert.Equal(t, 0, store.Calls("SetMigratedAt"))

		t.Run("retry restores from the intact backups", func(t *testing.T) {
			delete(store.FailOn, "InsertAssumptions")

			res := NewService(store).Rollback(ctx, "p1")
			require.True(t, res.Success)
			assert.Equal(t, int64(0), res.Deleted)
			assert.ElementsMatch(t, original, store.Assumptions("p1"))
		})
	})

	t.Run("conflict midway through the batch writes nothing", func(t *testing.T) {
		store, _ := migratedWithBackups("p1")
		clash := testutil.LegacyAssumptions("p9", domain.AreaChannels)[0]
		clash.ID = "p1-a2"
		store.PutAssumptions(clash)

		res := NewService(store).Rollback(ctx, "p1")

		assert.False(t, res.Success)
		assert.Equal(t, KindInsertFailure, res.Error.Kind)
		assert.Equal(t, 0, res.Restored)
		assert.Empty(t, store.Assumptions("p1"))
		p, _ := store.Project("p1")
		assert.NotNil(t, p.MigratedAt)
	})

	t.Run("marker clear failure after restore", func(t *testing.T) {
		store, original := migratedWithBackups("p1")
		store.FailOn["SetMigratedAt"] = errors.New("timeout")

		res := NewService(store).Rollback(ctx, "p1")

		assert.False(t, res.Success)
		assert.Equal(t, KindMarkerWrite, res.Error.Kind)
		assert.Equal(t, 3, res.Restored)
		assert.ElementsMatch(t, original, store.Assumptions("p1"))
	})
}

func TestRollback_SharesLockWithMigrate(t *testing.T) {
	store, _ := migratedWithBackups("p1")
	locker := testutil.NewMemLocker()
	locker.Hold("project-migration:p1")

	res := NewService(store, WithLocker(locker)).Rollback(context.Background(), "p1")

	assert.False(t, res.Success)
	assert.Equal(t, KindLockUnavailable, res.Error.Kind)
	assert.Equal(t, 0, store.Calls("ListAssumptionBackups"))
}
