package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"charterlens/app/handler"
	"charterlens/app/router"
	"charterlens/internal/service"
	"charterlens/pkg/analysis"
	"charterlens/pkg/config"
	"charterlens/pkg/logger"
	"charterlens/pkg/metrics"
	"charterlens/pkg/notification"
	"charterlens/pkg/runlock"
	"charterlens/pkg/schedule"
	mysqlstore "charterlens/pkg/store/mysql"
	redisstore "charterlens/pkg/store/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
)

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.Sync()
	})
	return nil
}

// initMySQL initializes MySQL
func (app *Application) initMySQL() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		app.config.MySQL.User,
		app.config.MySQL.Password,
		app.config.MySQL.Host,
		app.config.MySQL.Port,
		app.config.MySQL.Database,
	)

	repo, err := mysqlstore.NewRepository(dsn)
	if err != nil {
		return err
	}

	app.mysqlRepo = repo
	app.registerCleanup(func() {
		repo.Close()
		logger.InfoCtx(app.ctx, "MySQL connection has been closed")
	})

	return nil
}

// initRedis initializes Redis. Optional: without it the run lock
// degrades to single-instance mode and the weekly cron is disabled.
func (app *Application) initRedis() error {
	client, err := redisstore.NewRedisClient(app.config)
	if err != nil {
		return err
	}
	if client == nil {
		logger.WarnCtx(app.ctx, "Redis not configured, run lock and weekly schedule are disabled")
		return nil
	}

	app.redisClient = client
	app.registerCleanup(func() {
		client.Close()
		logger.InfoCtx(app.ctx, "Redis connection has been closed")
	})

	return nil
}

// initClients initializes the external pipeline clients
func (app *Application) initClients() error {
	app.metricsProvider = metrics.NewClient(&app.config.Metrics)

	engine, err := analysis.NewEngine(app.ctx, &app.config.Analysis)
	if err != nil {
		return fmt.Errorf("failed to create analysis engine: %w", err)
	}
	app.analysisEngine = engine

	app.notifier = notification.NewSlackNotifier(&app.config.Notification)
	return nil
}

// initServices initializes service layer
func (app *Application) initServices() error {
	var redisClient *goredis.Client
	if app.redisClient != nil {
		redisClient = app.redisClient.GetClient()
	}
	runLock := runlock.NewRedisLock(redisClient, "analytics:run-lock")

	app.pipelineService = service.NewPipelineService(
		app.mysqlRepo,
		app.metricsProvider,
		app.analysisEngine,
		app.notifier,
		runLock,
		&app.config.Site,
	)
	app.reportService = service.NewReportService(app.mysqlRepo, app.notifier)
	return nil
}

// initSchedule initializes the weekly cron. Requires redis; without it
// runs are trigger-only via POST /analytics/collect.
func (app *Application) initSchedule() error {
	if app.redisClient == nil {
		return nil
	}

	manager := schedule.NewManager(app.config)
	err := manager.RegisterWeeklyRun(app.config.Schedule.WeeklyCron, func(ctx context.Context) error {
		_, err := app.pipelineService.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}

	app.scheduleManager = manager
	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.analyticsHandler = handler.NewAnalyticsHandler(app.pipelineService, app.reportService)
	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	gin.SetMode(app.config.Server.Mode)
	app.ginEngine = gin.New()

	r := router.NewRouter(app.analyticsHandler)
	r.Setup(app.ginEngine)

	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
		// Collect runs the whole pipeline inline; give it room
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
	}
	return nil
}
