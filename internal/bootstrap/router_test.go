package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
	"github.com/beachhead-labs/beachhead-backend/internal/projects/migration"
	"github.com/beachhead-labs/beachhead-backend/internal/testutil"
)

type staticVerifier struct {
	email      string
	unverified bool
}

func (v staticVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: "u1", Claims: map[string]interface{}{"email": v.email, "email_verified": !v.unverified}}, nil
}

func buildTestRouter(verifier staticVerifier, useVerifier bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := testutil.NewMemStore()
	store.PutProject(testutil.LegacyProject("p1"))
	store.PutAssumptions(testutil.LegacyAssumptions("p1", domain.AreaProblem)...)

	deps := RouterDeps{
		ServiceName: "beachhead-backend",
		Version:     "test",
		CORSOrigins: []string{"http://localhost:5173"},
		Migrations:  migration.NewService(store),
		AdminEmails: []string{"ops@beachhead.io"},
	}
	if useVerifier {
		deps.Verifier = verifier
	}
	return BuildRouter(deps)
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestBuildRouter(t *testing.T) {
	t.Run("health is public and tagged with a request id", func(t *testing.T) {
		r := buildTestRouter(staticVerifier{}, true)
		rr := get(r, "/healthz", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
	})

	t.Run("admin routes require a token", func(t *testing.T) {
		r := buildTestRouter(staticVerifier{email: "ops@beachhead.io"}, true)
		assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/projects/p1/migration", "").Code)
		assert.Equal(t, http.StatusOK, get(r, "/api/v1/admin/projects/p1/migration", "good").Code)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		r := buildTestRouter(staticVerifier{email: "dev@example.com"}, true)
		assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/admin/projects/p1/migration", "good").Code)
	})

	t.Run("unverified admin email cannot roll back", func(t *testing.T) {
		r := buildTestRouter(staticVerifier{email: "ops@beachhead.io", unverified: true}, true)
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/projects/p1/migration/rollback", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("without firebase routes are open", func(t *testing.T) {
		r := buildTestRouter(staticVerifier{}, false)
		assert.Equal(t, http.StatusOK, get(r, "/api/v1/admin/projects/p1/migration", "").Code)
	})
}

func TestCORSConfig(t *testing.T) {
	t.Run("explicit origins", func(t *testing.T) {
		cfg := corsConfig([]string{"https://admin.beachhead.io"})
		assert.False(t, cfg.AllowAllOrigins)
		assert.True(t, cfg.AllowCredentials)
		assert.Contains(t, cfg.AllowHeaders, "Authorization")
		assert.NoError(t, cfg.Validate())
	})

	t.Run("wildcard", func(t *testing.T) {
		cfg := corsConfig([]string{"*"})
		assert.True(t, cfg.AllowAllOrigins)
		assert.Empty(t, cfg.AllowOrigins)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("preflight from allowed origin", func(t *testing.T) {
		r := buildTestRouter(staticVerifier{}, true)
		req, _ := http.NewRequest(http.MethodOptions, "/api/v1/admin/projects/p1/migration", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
