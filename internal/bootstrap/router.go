package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/beachhead-labs/beachhead-backend/internal/api/http"
	"github.com/beachhead-labs/beachhead-backend/internal/api/http/middleware"
	"github.com/beachhead-labs/beachhead-backend/internal/api/http/routes"
	authmw "github.com/beachhead-labs/beachhead-backend/internal/auth/middleware"
	projectshttp "github.com/beachhead-labs/beachhead-backend/internal/projects/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	// DB is pinged by the health check; nil reports "disabled".
	DB          httpapi.Pinger
	Migrations  projectshttp.MigrationService
	Verifier    authmw.TokenVerifier
	AdminEmails []string
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	routes.RegisterV1(r, routes.V1Deps{
		Migrations:  dep.Migrations,
		Verifier:    dep.Verifier,
		AdminEmails: dep.AdminEmails,
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AddAllowHeaders("Authorization", "X-Request-Id")
	cfg.AddExposeHeaders("X-Request-Id")
	cfg.MaxAge = 12 * time.Hour

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
