package main

import (
	"time"

	"charterlens/internal/jobs"
	"charterlens/pkg/logger"
)

// initJobs registers background maintenance jobs
func (app *Application) initJobs() error {
	if app.mysqlRepo == nil {
		logger.WarnCtx(app.ctx, "Store not initialized yet, skipping background task registration")
		return nil
	}

	manager := jobs.NewManager(app.ctx)

	staleness := time.Duration(app.config.Schedule.StaleAfterMinutes) * time.Minute
	interval := time.Duration(app.config.Schedule.ReaperInterval) * time.Minute
	manager.Register(jobs.NewStaleReportReaper(app.mysqlRepo, staleness, interval))

	app.jobsManager = manager
	return nil
}
