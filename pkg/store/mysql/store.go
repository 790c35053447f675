package mysql

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "charterlens/internal/model"
	"charterlens/pkg/interfaces"
	"charterlens/pkg/store/mysql/model"
)

// Repository aggregates the MySQL repositories and implements the
// ReportStore contract on top of them.
type Repository struct {
	ds *Datastore

	Report     *ReportRepository
	Hypothesis *HypothesisRepository
}

var _ interfaces.ReportStore = (*Repository)(nil)

// NewRepository creates a MySQL repository with all sub-repositories
func NewRepository(dsn string) (*Repository, error) {
	ds, err := NewDatastore(dsn)
	if err != nil {
		return nil, err
	}

	if err := ds.db.AutoMigrate(&model.Report{}, &model.Hypothesis{}); err != nil {
		return nil, err
	}

	return &Repository{
		ds:         ds,
		Report:     NewReportRepository(ds),
		Hypothesis: NewHypothesisRepository(ds),
	}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.ds.Close()
}

// CreateReport opens a new report in collecting state
func (r *Repository) CreateReport(ctx context.Context, periodStart, periodEnd time.Time) (string, error) {
	row := &model.Report{
		ReportID:    uuid.NewString(),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		RawMetrics:  model.MetricMap{},
		Status:      string(domain.ReportStatusCollecting),
	}
	if err := r.Report.Create(ctx, row); err != nil {
		return "", err
	}
	return row.ReportID, nil
}

// UpdateRawMetrics stores metrics and flips the report to analyzing
func (r *Repository) UpdateRawMetrics(ctx context.Context, reportID string, metrics map[string]float64) error {
	return r.Report.UpdateRawMetrics(ctx, reportID, model.MetricMap(metrics))
}

// CompleteReport stores the analysis payload and flips the report to complete
func (r *Repository) CompleteReport(ctx context.Context, reportID string, analysis *domain.AnalysisResult) error {
	var payload *model.AnalysisPayload
	if analysis != nil {
		converted := model.AnalysisPayload(*analysis)
		payload = &converted
	}
	return r.Report.Complete(ctx, reportID, payload)
}

// FailReport flips a non-terminal report to error
func (r *Repository) FailReport(ctx context.Context, reportID string, message string) error {
	return r.Report.Fail(ctx, reportID, message)
}

// InsertHypotheses persists drafts for a report in one transaction.
// Priorities are normalized to lower case so the digest ordering stays stable.
func (r *Repository) InsertHypotheses(ctx context.Context, reportID string, drafts []domain.HypothesisDraft) ([]*domain.Hypothesis, error) {
	if len(drafts) == 0 {
		return []*domain.Hypothesis{}, nil
	}

	rows := make([]*model.Hypothesis, 0, len(drafts))
	for _, draft := range drafts {
		rows = append(rows, &model.Hypothesis{
			HypothesisID:   uuid.NewString(),
			ReportID:       reportID,
			Title:          draft.Title,
			Problem:        draft.Problem,
			Solution:       draft.Solution,
			ExpectedImpact: draft.ExpectedImpact,
			Priority:       strings.ToLower(strings.TrimSpace(draft.Priority)),
			Category:       draft.Category,
			Status:         domain.HypothesisStatusNew,
		})
	}

	err := r.ds.ExecTx(ctx, func(ctx context.Context) error {
		return r.Hypothesis.CreateBatch(ctx, rows)
	})
	if err != nil {
		return nil, err
	}

	return ToHypothesisDomainList(rows), nil
}

// GetReport returns a report by id, nil if not found
func (r *Repository) GetReport(ctx context.Context, reportID string) (*domain.AnalyticsReport, error) {
	row, err := r.Report.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return ToReportDomain(row), nil
}

// ListReports returns a page of reports newest first, plus the total count
func (r *Repository) ListReports(ctx context.Context, limit, offset int) ([]*domain.AnalyticsReport, int64, error) {
	rows, total, err := r.Report.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return ToReportDomainList(rows), total, nil
}

// ListHypotheses returns hypotheses matching the filter, newest first
func (r *Repository) ListHypotheses(ctx context.Context, filter domain.HypothesisFilter) ([]*domain.Hypothesis, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.Hypothesis.List(ctx, filter.ReportID, filter.Status, limit)
	if err != nil {
		return nil, err
	}
	return ToHypothesisDomainList(rows), nil
}

// UpdateHypothesis applies operator edits and returns the updated row.
// Returns (nil, nil) when the hypothesis does not exist.
func (r *Repository) UpdateHypothesis(ctx context.Context, hypothesisID string, update domain.HypothesisUpdate) (*domain.Hypothesis, error) {
	existing, err := r.Hypothesis.Get(ctx, hypothesisID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	updates := map[string]interface{}{}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}

	if len(updates) > 0 {
		if err := r.Hypothesis.UpdateFields(ctx, hypothesisID, updates); err != nil {
			return nil, err
		}
	}

	row, err := r.Hypothesis.Get(ctx, hypothesisID)
	if err != nil {
		return nil, err
	}
	return ToHypothesisDomain(row), nil
}

// FailStaleReports errors out reports stuck in a non-terminal state
func (r *Repository) FailStaleReports(ctx context.Context, olderThan time.Duration) (int64, error) {
	return r.Report.FailStale(ctx, olderThan)
}
