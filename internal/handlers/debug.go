package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/presence"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, registry *presence.Registry, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/presence", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"online": registry.Online(),
			"users":  registry.Snapshot(),
		})
	})
}
