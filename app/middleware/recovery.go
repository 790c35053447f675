package middleware

import (
	"net/http"
	"runtime/debug"

	"charterlens/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery catches panics and converts them to a 500 response
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				logger.ErrorCtx(c.Request.Context(),
					"panic recovered: %v\nstack:\n%s",
					err,
					string(stack),
				)

				body := gin.H{"error": "internal server error"}
				if gin.Mode() == gin.DebugMode {
					body["detail"] = err
					body["stack"] = string(stack)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()

		c.Next()
	}
}
