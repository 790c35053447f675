package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charterlens/internal/model"
	"charterlens/pkg/config"
	"charterlens/pkg/constants"
	"charterlens/pkg/interfaces"
	"charterlens/pkg/logger"
	"charterlens/pkg/retry"
	"charterlens/pkg/runlock"
)

// StepOutcome tagged result for a best-effort pipeline step, so callers
// and tests can see a degraded run without inspecting logs.
type StepOutcome struct {
	State  string `json:"state"` // ok, degraded, skipped
	Reason string `json:"reason,omitempty"`
}

const (
	StepOK       = "ok"
	StepDegraded = "degraded"
	StepSkipped  = "skipped"
)

func outcomeOK() StepOutcome                  { return StepOutcome{State: StepOK} }
func outcomeDegraded(reason string) StepOutcome { return StepOutcome{State: StepDegraded, Reason: reason} }
func outcomeSkipped(reason string) StepOutcome  { return StepOutcome{State: StepSkipped, Reason: reason} }

// RunResult summarizes one completed pipeline run
type RunResult struct {
	ReportID        string             `json:"report_id"`
	HypothesesCount int                `json:"hypotheses_count"`
	Status          model.ReportStatus `json:"status"`
	PreviousWeek    StepOutcome        `json:"previous_week"`
	Notification    StepOutcome        `json:"notification"`
}

// PipelineError is a fatal run failure carrying the persisted report id
// so the caller can look up the error record.
type PipelineError struct {
	ReportID string
	Stage    string
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s failed (report %s): %v", e.Stage, e.ReportID, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// PipelineService runs the weekly analytics pipeline: compute the
// window, collect metrics, analyze, persist, notify. One invocation is
// one sequential run; overlapping runs are refused via the run lock.
type PipelineService struct {
	store    interfaces.ReportStore
	metrics  interfaces.MetricsProvider
	engine   interfaces.AnalysisEngine
	notifier interfaces.Notifier
	lock     runlock.Lock

	site         model.SiteContext
	eventMetrics map[string]string

	// injectable clock for window tests
	now func() time.Time
}

// NewPipelineService creates the orchestrator. lock may be nil when no
// redis is configured (single-instance mode).
func NewPipelineService(
	store interfaces.ReportStore,
	metrics interfaces.MetricsProvider,
	engine interfaces.AnalysisEngine,
	notifier interfaces.Notifier,
	lock runlock.Lock,
	siteCfg *config.SiteConfig,
) *PipelineService {
	eventMetrics := constants.DefaultEventMetrics
	if siteCfg != nil && len(siteCfg.ConversionEvents) > 0 {
		eventMetrics = siteCfg.ConversionEvents
	}

	site := model.SiteContext{}
	if siteCfg != nil {
		site.SiteName = siteCfg.Name
		site.SiteType = siteCfg.Type
		site.Pages = siteCfg.Pages
	}
	for event := range eventMetrics {
		site.ConversionEvents = append(site.ConversionEvents, event)
	}

	return &PipelineService{
		store:        store,
		metrics:      metrics,
		engine:       engine,
		notifier:     notifier,
		lock:         lock,
		site:         site,
		eventMetrics: eventMetrics,
		now:          time.Now,
	}
}

// Run executes one full pipeline run
func (s *PipelineService) Run(ctx context.Context) (*RunResult, error) {
	if s.lock != nil {
		acquired, err := s.lock.TryAcquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("run lock check failed: %w", err)
		}
		if !acquired {
			return nil, fmt.Errorf("another pipeline run is already in progress")
		}
		defer func() {
			if err := s.lock.Release(ctx); err != nil {
				logger.WarnCtx(ctx, "failed to release run lock: %v", err)
			}
		}()
	}

	periodStart, periodEnd := computeWindow(s.now())
	logger.InfoCtx(ctx, "starting analytics run for %s to %s",
		periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"))

	// No report exists yet, so a create failure surfaces as-is
	var reportID string
	err := retry.Do(ctx, func() error {
		var createErr error
		reportID, createErr = s.store.CreateReport(ctx, periodStart, periodEnd)
		return createErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	// From here every fatal failure lands in the persisted error record
	result, err := s.runStages(ctx, reportID, periodStart, periodEnd)
	if err != nil {
		s.failRun(ctx, reportID, err)
		return nil, &PipelineError{ReportID: reportID, Stage: stageOf(err), Err: err}
	}
	return result, nil
}

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return fmt.Sprintf("%s: %v", e.stage, e.err) }
func (e *stageError) Unwrap() error { return e.err }

func stageOf(err error) string {
	if se, ok := err.(*stageError); ok {
		return se.stage
	}
	return "unknown"
}

func (s *PipelineService) runStages(ctx context.Context, reportID string, periodStart, periodEnd time.Time) (*RunResult, error) {
	// Previous window is an independent read, so it runs alongside the
	// current one; its failure only degrades the comparison baseline.
	prevStart := periodStart.AddDate(0, 0, -7)
	prevEnd := periodStart.AddDate(0, 0, -1)

	type fetchResult struct {
		data *model.WeeklyData
		err  error
	}
	prevCh := make(chan fetchResult, 1)
	go func() {
		data, err := s.metrics.FetchWeeklyMetrics(ctx, prevStart, prevEnd)
		prevCh <- fetchResult{data: data, err: err}
	}()

	currentWeek, err := s.metrics.FetchWeeklyMetrics(ctx, periodStart, periodEnd)
	if err != nil {
		<-prevCh
		return nil, &stageError{stage: "collect", err: err}
	}

	previousOutcome := outcomeOK()
	var previousWeek *model.WeeklyData
	if prev := <-prevCh; prev.err != nil {
		logger.WarnCtx(ctx, "previous week fetch failed, continuing without baseline: %v", prev.err)
		previousOutcome = outcomeDegraded(prev.err.Error())
	} else {
		previousWeek = prev.data
	}

	rawMetrics := s.buildRawMetrics(currentWeek)
	err = s.persist(ctx, func() error {
		return s.store.UpdateRawMetrics(ctx, reportID, rawMetrics)
	})
	if err != nil {
		return nil, &stageError{stage: "persist-metrics", err: err}
	}

	analysis, err := s.engine.Analyze(ctx, &model.AnalysisInput{
		CurrentWeek:  currentWeek,
		PreviousWeek: previousWeek,
		Site:         s.site,
	})
	if err != nil {
		return nil, &stageError{stage: "analyze", err: err}
	}

	err = s.persist(ctx, func() error {
		return s.store.CompleteReport(ctx, reportID, analysis)
	})
	if err != nil {
		return nil, &stageError{stage: "persist-analysis", err: err}
	}

	var hypotheses []*model.Hypothesis
	err = s.persist(ctx, func() error {
		var insertErr error
		hypotheses, insertErr = s.store.InsertHypotheses(ctx, reportID, analysis.Hypotheses)
		return insertErr
	})
	if err != nil {
		return nil, &stageError{stage: "persist-hypotheses", err: err}
	}

	notificationOutcome := s.notify(ctx, reportID, hypotheses)

	logger.InfoCtx(ctx, "analytics run complete: report %s, %d hypotheses", reportID, len(hypotheses))
	return &RunResult{
		ReportID:        reportID,
		HypothesesCount: len(hypotheses),
		Status:          model.ReportStatusComplete,
		PreviousWeek:    previousOutcome,
		Notification:    notificationOutcome,
	}, nil
}

// notify is best-effort: the report is already durably complete, so a
// delivery failure degrades the run result instead of failing it.
func (s *PipelineService) notify(ctx context.Context, reportID string, hypotheses []*model.Hypothesis) StepOutcome {
	if s.notifier == nil || !s.notifier.Enabled() {
		return outcomeSkipped("notification credentials not configured")
	}

	report, err := s.store.GetReport(ctx, reportID)
	if err != nil || report == nil {
		logger.WarnCtx(ctx, "could not load report %s for notification: %v", reportID, err)
		return outcomeDegraded(fmt.Sprintf("report reload failed: %v", err))
	}

	if err := s.notifier.Send(ctx, report, hypotheses); err != nil {
		logger.WarnCtx(ctx, "weekly digest delivery failed for report %s: %v", reportID, err)
		return outcomeDegraded(err.Error())
	}
	return outcomeOK()
}

// failRun records the fatal error on the report. Best-effort: the
// original error is what surfaces to the caller either way.
func (s *PipelineService) failRun(ctx context.Context, reportID string, runErr error) {
	err := s.persist(ctx, func() error {
		return s.store.FailReport(ctx, reportID, runErr.Error())
	})
	if err != nil {
		logger.ErrorCtx(ctx, "failed to mark report %s as errored: %v (original: %v)", reportID, err, runErr)
	}
}

// persist retries a store write through the backoff policy. Invalid
// status transitions are permanent: the state machine only moves
// forward, so replaying the write cannot succeed.
func (s *PipelineService) persist(ctx context.Context, op func() error) error {
	return retry.Do(ctx, func() error {
		err := op()
		if errors.Is(err, model.ErrInvalidTransition) {
			return retry.Permanent(err)
		}
		return err
	})
}

// buildRawMetrics flattens the overview and maps each configured
// conversion event to its business-metric key, defaulting missing
// events to zero.
func (s *PipelineService) buildRawMetrics(week *model.WeeklyData) map[string]float64 {
	raw := map[string]float64{
		constants.MetricSessions:           float64(week.Overview.Sessions),
		constants.MetricTotalUsers:         float64(week.Overview.TotalUsers),
		constants.MetricNewUsers:           float64(week.Overview.NewUsers),
		constants.MetricBounceRate:         week.Overview.BounceRate,
		constants.MetricAvgSessionDuration: week.Overview.AvgSessionDuration,
		constants.MetricPageViews:          float64(week.Overview.PageViews),
	}
	for event, metricKey := range s.eventMetrics {
		raw[metricKey] = float64(week.EventCountByName(event))
	}
	return raw
}

// computeWindow returns the inclusive 7-day window ending yesterday,
// excluding the partially-complete current day.
func computeWindow(now time.Time) (periodStart, periodEnd time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	periodEnd = today.AddDate(0, 0, -1)
	periodStart = periodEnd.AddDate(0, 0, -6)
	return periodStart, periodEnd
}
