package http

import "github.com/gin-gonic/gin"

// Register attaches project migration routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id/migration", h.status)
	rg.POST("/:id/migration", h.migrate)
	rg.POST("/:id/migration/rollback", h.rollback)
	rg.POST("/:id/migration/snapshot", h.snapshot)
}
