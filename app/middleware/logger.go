package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/pretty"
)

// Logger request access log, with the compacted body for mutating requests
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		var bodyStr string
		if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPatch {
			bodyStr = getRequestBody(c)
		}

		c.Next()

		if c.Writer.Status() == http.StatusNotFound {
			return
		}

		logMsg := fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %s | %s",
			startTime.Format("2006/01/02 - 15:04:05"),
			c.Writer.Status(),
			time.Since(startTime),
			c.ClientIP(),
			c.Request.Method,
			c.Request.RequestURI,
		)

		if bodyStr != "" {
			logMsg += fmt.Sprintf("\nRequest Body: %s", bodyStr)
		}

		fmt.Println(logMsg)
	}
}

// getRequestBody reads and restores the request body
func getRequestBody(c *gin.Context) string {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}
	return compressBody(bodyBytes)
}

// compressBody compacts JSON and truncates oversized bodies
func compressBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	compressed := pretty.Ugly(body)
	if len(compressed) > 1000 {
		return string(compressed[:1000]) + "..."
	}
	return string(compressed)
}
