package interfaces

import (
	"context"
	"time"

	"charterlens/internal/model"
)

// MetricsProvider fetches traffic metrics from the analytics provider.
// Errors propagate unchanged; the caller decides which windows are
// fatal and which are best-effort.
type MetricsProvider interface {
	FetchWeeklyMetrics(ctx context.Context, startDate, endDate time.Time) (*model.WeeklyData, error)
}

// AnalysisEngine turns a run's metrics plus site context into a
// structured analysis. A malformed model response is an error; callers
// never see a partially parsed result.
type AnalysisEngine interface {
	Analyze(ctx context.Context, input *model.AnalysisInput) (*model.AnalysisResult, error)
}

// Notifier delivers the weekly digest to the configured chat channel.
type Notifier interface {
	// Enabled reports whether notification credentials are configured.
	// When false, Send must not be called.
	Enabled() bool

	// Send posts a digest for a completed report and its hypotheses.
	Send(ctx context.Context, report *model.AnalyticsReport, hypotheses []*model.Hypothesis) error
}
