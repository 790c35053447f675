package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"charterlens/pkg/config"
)

func TestMain(m *testing.M) {
	prev := config.GlobalConfig
	config.GlobalConfig = &config.Config{}
	code := m.Run()
	config.GlobalConfig = prev
	os.Exit(code)
}

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/analytics/collect", CronAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestCronAuth_SkipsWhenSecretUnset(t *testing.T) {
	config.GlobalConfig.Server.CronSecret = ""
	defer func() { config.GlobalConfig.Server.CronSecret = "" }()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analytics/collect", nil)
	authTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCronAuth_RejectsBadToken(t *testing.T) {
	config.GlobalConfig.Server.CronSecret = "s3cret"
	defer func() { config.GlobalConfig.Server.CronSecret = "" }()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analytics/collect", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	authTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCronAuth_AcceptsBearerToken(t *testing.T) {
	config.GlobalConfig.Server.CronSecret = "s3cret"
	defer func() { config.GlobalConfig.Server.CronSecret = "" }()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analytics/collect", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	authTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
