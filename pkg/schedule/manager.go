package schedule

import (
	"context"
	"fmt"

	"charterlens/pkg/config"
	"charterlens/pkg/logger"

	"github.com/hibiken/asynq"
)

const (
	// TypeWeeklyCollect periodic task type for the weekly pipeline run
	TypeWeeklyCollect = "analytics:weekly_collect"
)

// Manager owns the cron scheduler and the worker that executes the
// weekly run. Both share the redis connection; the scheduler enqueues
// on the cron spec and the local server consumes.
type Manager struct {
	scheduler *asynq.Scheduler
	server    *asynq.Server
	mux       *asynq.ServeMux
}

// NewManager creates the schedule manager
func NewManager(cfg *config.Config) *Manager {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			// The pipeline is strictly sequential; one worker is the point
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	return &Manager{
		scheduler: scheduler,
		server:    server,
		mux:       asynq.NewServeMux(),
	}
}

// RegisterWeeklyRun binds the cron spec to a pipeline run. A run owns
// its own failure handling (the report error record), so the task never
// retries.
func (m *Manager) RegisterWeeklyRun(cronSpec string, run func(ctx context.Context) error) error {
	task := asynq.NewTask(TypeWeeklyCollect, nil, asynq.MaxRetry(0))
	entryID, err := m.scheduler.Register(cronSpec, task)
	if err != nil {
		return fmt.Errorf("failed to register weekly schedule %q: %w", cronSpec, err)
	}
	logger.Infof("weekly pipeline scheduled, cron: %q, entry: %s", cronSpec, entryID)

	m.mux.HandleFunc(TypeWeeklyCollect, func(ctx context.Context, t *asynq.Task) error {
		logger.InfoCtx(ctx, "scheduled weekly pipeline run starting")
		if err := run(ctx); err != nil {
			// Logged, not returned: returning would requeue the task and
			// the failed run is already recorded on the report.
			logger.ErrorCtx(ctx, "scheduled weekly pipeline run failed: %v", err)
		}
		return nil
	})
	return nil
}

// Start starts the scheduler and the worker
func (m *Manager) Start() error {
	if err := m.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	if err := m.server.Start(m.mux); err != nil {
		return fmt.Errorf("failed to start schedule worker: %w", err)
	}
	return nil
}

// Stop stops the scheduler and drains the worker
func (m *Manager) Stop() {
	logger.Info("stopping schedule manager")
	m.scheduler.Shutdown()
	m.server.Stop()
	m.server.Shutdown()
}
