package router

import (
	"net/http"

	"charterlens/app/handler"
	"charterlens/app/middleware"

	"github.com/gin-gonic/gin"
)

// Router wires the HTTP surface
type Router struct {
	analyticsHandler *handler.AnalyticsHandler
}

// NewRouter creates a new Router
func NewRouter(analyticsHandler *handler.AnalyticsHandler) *Router {
	return &Router{
		analyticsHandler: analyticsHandler,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	analytics := engine.Group("/analytics")
	{
		// Trigger endpoints sit behind the cron secret
		analytics.POST("/collect", middleware.CronAuth(), r.analyticsHandler.Collect)
		analytics.POST("/notify", middleware.CronAuth(), r.analyticsHandler.Notify)

		analytics.GET("/reports", r.analyticsHandler.ListReports)
		analytics.GET("/reports/:id", r.analyticsHandler.GetReport)
		analytics.GET("/hypotheses", r.analyticsHandler.ListHypotheses)
		analytics.PATCH("/hypotheses", r.analyticsHandler.UpdateHypothesis)
	}
}
