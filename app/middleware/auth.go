package middleware

import (
	"net/http"
	"strings"

	"charterlens/pkg/config"
	"charterlens/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CronAuth bearer token authentication for the trigger endpoints.
// With no secret configured every request passes, which is the local
// development mode.
func CronAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		expectedSecret := config.GlobalConfig.Server.CronSecret

		if expectedSecret == "" {
			logger.DebugCtx(c.Request.Context(), "cron secret not configured, skipping auth")
			c.Next()
			return
		}

		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token != expectedSecret {
			logger.WarnCtx(c.Request.Context(), "unauthorized request to %s", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Next()
	}
}
