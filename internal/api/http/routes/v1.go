package routes

import (
	"github.com/gin-gonic/gin"

	authmw "github.com/beachhead-labs/beachhead-backend/internal/auth/middleware"
	"github.com/beachhead-labs/beachhead-backend/internal/logging"
	projectshttp "github.com/beachhead-labs/beachhead-backend/internal/projects/http"
)

type V1Deps struct {
	Migrations  projectshttp.MigrationService
	// Verifier is nil when Firebase is not configured; config validation
	// rejects that in production.
	Verifier    authmw.TokenVerifier
	AdminEmails []string
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	admin := api.Group("/admin")
	if dep.Verifier != nil {
		admin.Use(authmw.FirebaseAuthMiddleware(dep.Verifier), authmw.RequireAdmin(dep.AdminEmails))
	} else {
		logging.Base().Warn("firebase not configured, admin routes are unauthenticated")
	}

	projectshttp.New(dep.Migrations).Register(admin.Group("/projects"))
}
