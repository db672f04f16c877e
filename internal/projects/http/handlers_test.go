package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
	"github.com/beachhead-labs/beachhead-backend/internal/projects/migration"
	"github.com/beachhead-labs/beachhead-backend/internal/testutil"
)

type envelope struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error"`
	Status json.RawMessage `json:"status"`
	Result json.RawMessage `json:"result"`
}

func setupRouter(t *testing.T, opts ...migration.Option) (*gin.Engine, *testutil.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewMemStore()
	store.PutProject(testutil.LegacyProject("p1"))
	store.PutAssumptions(testutil.LegacyAssumptions("p1", domain.AreaProblem, domain.AreaSolution, "unknownArea")...)

	svc := migration.NewService(store, append([]migration.Option{migration.WithClock(testutil.Clock(testutil.FixedTime))}, opts...)...)

	router := gin.New()
	New(svc).Register(router.Group("/api/v1/admin/projects"))
	return router, store
}

func do(t *testing.T, router *gin.Engine, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var body envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr, body
}

func TestStatusEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	t.Run("legacy project", func(t *testing.T) {
		rr, body := do(t, router, http.MethodGet, "/api/v1/admin/projects/p1/migration")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, body.OK)

		var st migration.Status
		require.NoError(t, json.Unmarshal(body.Status, &st))
		assert.True(t, st.NeedsMigration)
		assert.Equal(t, 3, st.AssumptionCount)
	})

	t.Run("unknown project", func(t *testing.T) {
		rr, body := do(t, router, http.MethodGet, "/api/v1/admin/projects/ghost/migration")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.False(t, body.OK)
	})
}

func TestStatusEndpoint_FetchFailure(t *testing.T) {
	router, store := setupRouter(t)
	store.FailOn["CountAssumptions"] = errors.New("timeout")

	rr, body := do(t, router, http.MethodGet, "/api/v1/admin/projects/p1/migration")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, body.Error, "timeout")
}

func TestMigrateEndpoint(t *testing.T) {
	router, store := setupRouter(t)

	rr, body := do(t, router, http.MethodPost, "/api/v1/admin/projects/p1/migration")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, body.OK)

	var res migration.MigrationResult
	require.NoError(t, json.Unmarshal(body.Result, &res))
	assert.Equal(t, 3, res.AssumptionsMigrated)
	assert.Empty(t, res.Errors)

	p, _ := store.Project("p1")
	assert.NotNil(t, p.MigratedAt)
}

func TestMigrateEndpoint_PartialFailure(t *testing.T) {
	router, store := setupRouter(t)
	store.FailUpdateFor["p1-a2"] = errors.New("row locked")

	rr, body := do(t, router, http.MethodPost, "/api/v1/admin/projects/p1/migration")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, body.OK)

	var res migration.MigrationResult
	require.NoError(t, json.Unmarshal(body.Result, &res))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, migration.KindRowUpdateFailure, res.Errors[0].Kind)
	assert.Equal(t, "p1-a2", res.Errors[0].AssumptionID)
}

func TestMigrateEndpoint_Locked(t *testing.T) {
	locker := testutil.NewMemLocker()
	locker.Hold("project-migration:p1")
	router, _ := setupRouter(t, migration.WithLocker(locker))

	rr, body := do(t, router, http.MethodPost, "/api/v1/admin/projects/p1/migration")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.False(t, body.OK)
}

func TestRollbackEndpoint(t *testing.T) {
	t.Run("no backup", func(t *testing.T) {
		router, _ := setupRouter(t)

		rr, body := do(t, router, http.MethodPost, "/api/v1/admin/projects/p1/migration/rollback")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, body.OK)

		var res migration.RollbackResult
		require.NoError(t, json.Unmarshal(body.Result, &res))
		require.NotNil(t, res.Error)
		assert.Equal(t, migration.KindNoBackupFound, res.Error.Kind)
	})

	t.Run("snapshot, migrate, rollback", func(t *testing.T) {
		router, store := setupRouter(t)
		original := store.Assumptions("p1")

		_, body := do(t, router, http.MethodPost, "/api/v1/admin/projects/p1/migration/snapshot")
		require.True(t, body.OK)
		_, body = do(t, router, http.MethodPost, "/api/v1/admin/projects/p1/migration")
		require.True(t, body.OK)
		rr, body := do(t, router, http.MethodPost, "/api/v1/admin/projects/p1/migration/rollback")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, body.OK)
		assert.ElementsMatch(t, original, store.Assumptions("p1"))
	})
}

func TestSnapshotEndpoint_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	rr, body := do(t, router, http.MethodPost, "/api/v1/admin/projects/ghost/migration/snapshot")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, body.OK)
}
