package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler checks the health status of the service
// @Summary      Health check
// @Description  Check the health status of the store and the configured executor
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Service health status"
// @Router       /health [get]
func (h *Handlers) HealthHandler(c *gin.Context) {
	status := gin.H{
		"status":   "healthy",
		"db":       "not_configured",
		"executor": "stub",
		"sessions": len(h.sessions.List()),
	}
	if h.db != nil {
		status["db"] = "connected"
	}

	if checker, ok := h.executor.(connectionChecker); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if checker.IsConnected(ctx) {
			status["executor"] = checker.Driver() + ":connected"
		} else {
			status["executor"] = checker.Driver() + ":unreachable"
			status["status"] = "degraded"
		}
	}

	c.JSON(http.StatusOK, status)
}
