package interfaces

import (
	"context"
	"time"

	"charterlens/internal/model"
)

// ReportStore persists analytics reports and their hypotheses, and owns
// the report status transitions:
//
//	(none) -> collecting -> analyzing -> complete
//	collecting/analyzing -> error
//
// complete and error are terminal; implementations must reject backward
// transitions with an error wrapping model.ErrInvalidTransition.
type ReportStore interface {
	// CreateReport opens a new report in collecting state and returns its id.
	CreateReport(ctx context.Context, periodStart, periodEnd time.Time) (string, error)

	// UpdateRawMetrics stores collected metrics and moves the report
	// from collecting to analyzing.
	UpdateRawMetrics(ctx context.Context, reportID string, metrics map[string]float64) error

	// CompleteReport stores the analysis payload and moves the report
	// from analyzing to complete.
	CompleteReport(ctx context.Context, reportID string, analysis *model.AnalysisResult) error

	// FailReport moves a non-terminal report to error with a message.
	FailReport(ctx context.Context, reportID string, message string) error

	// InsertHypotheses persists drafts for a report, assigning ids and
	// timestamps and defaulting status to "new". Empty input is a no-op.
	InsertHypotheses(ctx context.Context, reportID string, drafts []model.HypothesisDraft) ([]*model.Hypothesis, error)

	// GetReport returns a report by id, nil if not found.
	GetReport(ctx context.Context, reportID string) (*model.AnalyticsReport, error)

	// ListReports returns a page of reports, newest first, plus the total count.
	ListReports(ctx context.Context, limit, offset int) ([]*model.AnalyticsReport, int64, error)

	// ListHypotheses returns hypotheses matching the filter, newest first.
	ListHypotheses(ctx context.Context, filter model.HypothesisFilter) ([]*model.Hypothesis, error)

	// UpdateHypothesis applies operator edits (status/notes) and returns
	// the updated row. Descriptive fields never change.
	UpdateHypothesis(ctx context.Context, hypothesisID string, update model.HypothesisUpdate) (*model.Hypothesis, error)

	// FailStaleReports errors out reports stuck in a non-terminal state
	// longer than olderThan, returning how many were reaped.
	FailStaleReports(ctx context.Context, olderThan time.Duration) (int64, error)
}
