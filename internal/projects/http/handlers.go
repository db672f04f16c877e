package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/migration"
)

func projectID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing project id"})
		return "", false
	}
	return id, true
}

// statusFor maps a failure kind onto an HTTP status. Step failures of
// migrate/rollback are reports, not transport errors, so they stay 200.
func statusFor(f *migration.Failure) int {
	if f == nil {
		return http.StatusOK
	}
	switch f.Kind {
	case migration.KindNotFound:
		return http.StatusNotFound
	case migration.KindLockUnavailable:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

func (h *Handler) status(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	st, err := h.svc.GetMigrationStatus(c.Request.Context(), id)
	if err != nil {
		var f *migration.Failure
		if errors.As(err, &f) && f.Kind == migration.KindNotFound {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "status": st})
}

func (h *Handler) migrate(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	res := h.svc.Migrate(c.Request.Context(), id)

	var first *migration.Failure
	if len(res.Errors) > 0 {
		first = &res.Errors[0]
	}
	c.JSON(statusFor(first), gin.H{"ok": res.Success, "result": res})
}

func (h *Handler) rollback(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	res := h.svc.Rollback(c.Request.Context(), id)
	c.JSON(statusFor(res.Error), gin.H{"ok": res.Success, "result": res})
}

func (h *Handler) snapshot(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	res := h.svc.Snapshot(c.Request.Context(), id)
	c.JSON(statusFor(res.Error), gin.H{"ok": res.Success, "result": res})
}
