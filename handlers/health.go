package handlers

import (
	"net/http"

	"staybook/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

// HealthCheckHandler reports the last snapshot taken by the health monitor.
func (h *HealthHandler) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"message":      "staybook reservation engine",
		"dependencies": utils.GetHealthStatus(),
	})
}
