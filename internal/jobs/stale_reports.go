package jobs

import (
	"context"
	"time"

	"charterlens/pkg/interfaces"
	"charterlens/pkg/logger"
)

// StaleReportReaper errors out reports stuck in a non-terminal state,
// which happens when a run dies between transitions (process crash,
// lost DB connection after create).
type StaleReportReaper struct {
	store     interfaces.ReportStore
	staleness time.Duration
	interval  time.Duration
}

// NewStaleReportReaper creates the reaper job
func NewStaleReportReaper(store interfaces.ReportStore, staleness, interval time.Duration) *StaleReportReaper {
	if staleness <= 0 {
		staleness = time.Hour
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &StaleReportReaper{
		store:     store,
		staleness: staleness,
		interval:  interval,
	}
}

func (j *StaleReportReaper) Name() string {
	return "stale_report_reaper"
}

func (j *StaleReportReaper) Interval() time.Duration {
	return j.interval
}

func (j *StaleReportReaper) Run(ctx context.Context) error {
	reaped, err := j.store.FailStaleReports(ctx, j.staleness)
	if err != nil {
		return err
	}
	if reaped > 0 {
		logger.WarnCtx(ctx, "reaped %d stale report(s) stuck for more than %v", reaped, j.staleness)
	}
	return nil
}
