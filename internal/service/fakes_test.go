package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"charterlens/internal/model"
)

// fakeStore is an in-memory ReportStore with scriptable failures
type fakeStore struct {
	mu      sync.Mutex
	reports []*model.AnalyticsReport
	hyps    []*model.Hypothesis
	seq     int

	createErr   error
	rawErr      error
	completeErr error
	insertErr   error
	failErr     error

	rawCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) CreateReport(ctx context.Context, periodStart, periodEnd time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.seq++
	report := &model.AnalyticsReport{
		ID:          fmt.Sprintf("report-%d", f.seq),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		RawMetrics:  map[string]float64{},
		Status:      model.ReportStatusCollecting,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.reports = append(f.reports, report)
	return report.ID, nil
}

func (f *fakeStore) UpdateRawMetrics(ctx context.Context, reportID string, metrics map[string]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawCalls++
	if f.rawErr != nil {
		return f.rawErr
	}
	report := f.find(reportID)
	if report == nil || report.Status != model.ReportStatusCollecting {
		return fmt.Errorf("report %s: %w", reportID, model.ErrInvalidTransition)
	}
	report.RawMetrics = metrics
	report.Status = model.ReportStatusAnalyzing
	return nil
}

func (f *fakeStore) CompleteReport(ctx context.Context, reportID string, analysis *model.AnalysisResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	report := f.find(reportID)
	if report == nil || report.Status != model.ReportStatusAnalyzing {
		return fmt.Errorf("report %s: %w", reportID, model.ErrInvalidTransition)
	}
	report.Analysis = analysis
	report.Status = model.ReportStatusComplete
	return nil
}

func (f *fakeStore) FailReport(ctx context.Context, reportID string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	report := f.find(reportID)
	if report == nil || report.Status.IsTerminal() {
		return fmt.Errorf("report %s: %w", reportID, model.ErrInvalidTransition)
	}
	report.Status = model.ReportStatusError
	report.ErrorMessage = message
	return nil
}

func (f *fakeStore) InsertHypotheses(ctx context.Context, reportID string, drafts []model.HypothesisDraft) ([]*model.Hypothesis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	inserted := make([]*model.Hypothesis, 0, len(drafts))
	for _, draft := range drafts {
		f.seq++
		h := &model.Hypothesis{
			ID:             fmt.Sprintf("hyp-%d", f.seq),
			ReportID:       reportID,
			Title:          draft.Title,
			Problem:        draft.Problem,
			Solution:       draft.Solution,
			ExpectedImpact: draft.ExpectedImpact,
			Priority:       draft.Priority,
			Category:       draft.Category,
			Status:         model.HypothesisStatusNew,
		}
		f.hyps = append(f.hyps, h)
		inserted = append(inserted, h)
	}
	return inserted, nil
}

func (f *fakeStore) GetReport(ctx context.Context, reportID string) (*model.AnalyticsReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(reportID), nil
}

func (f *fakeStore) ListReports(ctx context.Context, limit, offset int) ([]*model.AnalyticsReport, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// newest first
	out := make([]*model.AnalyticsReport, 0, len(f.reports))
	for i := len(f.reports) - 1; i >= 0; i-- {
		out = append(out, f.reports[i])
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeStore) ListHypotheses(ctx context.Context, filter model.HypothesisFilter) ([]*model.Hypothesis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Hypothesis
	for i := len(f.hyps) - 1; i >= 0; i-- {
		h := f.hyps[i]
		if filter.ReportID != "" && h.ReportID != filter.ReportID {
			continue
		}
		if filter.Status != "" && h.Status != filter.Status {
			continue
		}
		out = append(out, h)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateHypothesis(ctx context.Context, hypothesisID string, update model.HypothesisUpdate) (*model.Hypothesis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.hyps {
		if h.ID == hypothesisID {
			if update.Status != nil {
				h.Status = *update.Status
			}
			if update.Notes != nil {
				h.Notes = *update.Notes
			}
			return h, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FailStaleReports(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var reaped int64
	for _, r := range f.reports {
		if !r.Status.IsTerminal() && r.UpdatedAt.Before(cutoff) {
			r.Status = model.ReportStatusError
			r.ErrorMessage = "report stuck in non-terminal state"
			reaped++
		}
	}
	return reaped, nil
}

func (f *fakeStore) find(reportID string) *model.AnalyticsReport {
	for _, r := range f.reports {
		if r.ID == reportID {
			return r
		}
	}
	return nil
}

// fakeMetrics serves scripted weekly data keyed on the window start
type fakeMetrics struct {
	mu           sync.Mutex
	currentStart time.Time
	current      *model.WeeklyData
	previous     *model.WeeklyData
	currentErr   error
	previousErr  error
	calls        [][2]time.Time
}

func (f *fakeMetrics) FetchWeeklyMetrics(ctx context.Context, startDate, endDate time.Time) (*model.WeeklyData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]time.Time{startDate, endDate})
	if startDate.Equal(f.currentStart) {
		if f.currentErr != nil {
			return nil, f.currentErr
		}
		return f.current, nil
	}
	if f.previousErr != nil {
		return nil, f.previousErr
	}
	return f.previous, nil
}

// fakeEngine returns a scripted analysis and records its input
type fakeEngine struct {
	result *model.AnalysisResult
	err    error
	input  *model.AnalysisInput
}

func (f *fakeEngine) Analyze(ctx context.Context, input *model.AnalysisInput) (*model.AnalysisResult, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeNotifier records sends and can simulate delivery failure
type fakeNotifier struct {
	enabled bool
	sendErr error
	sent    []*model.AnalyticsReport
}

func (f *fakeNotifier) Enabled() bool { return f.enabled }

func (f *fakeNotifier) Send(ctx context.Context, report *model.AnalyticsReport, hypotheses []*model.Hypothesis) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, report)
	return nil
}

// fakeLock scripts run lock acquisition
type fakeLock struct {
	acquired   bool
	acquireErr error
	released   bool
}

func (f *fakeLock) TryAcquire(ctx context.Context) (bool, error) {
	return f.acquired, f.acquireErr
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.released = true
	return nil
}
