package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "charterlens/internal/model"
	"charterlens/pkg/store/mysql/model"
)

// ReportRepository handles analytics report persistence in MySQL.
// Status transitions use CAS updates (WHERE status = expected) so a
// report can never move backward or leave a terminal state.
type ReportRepository struct {
	ds *Datastore
}

// NewReportRepository creates a new report repository
func NewReportRepository(ds *Datastore) *ReportRepository {
	return &ReportRepository{ds: ds}
}

// Create creates a new report row
func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.ds.DB(ctx).Create(report).Error
}

// Get retrieves a report by its public id, nil if not found
func (r *ReportRepository) Get(ctx context.Context, reportID string) (*model.Report, error) {
	var report model.Report
	err := r.ds.DB(ctx).Where("report_id = ?", reportID).First(&report).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

// UpdateRawMetrics stores collected metrics and moves the report from
// collecting to analyzing.
func (r *ReportRepository) UpdateRawMetrics(ctx context.Context, reportID string, metrics model.MetricMap) error {
	result := r.ds.DB(ctx).Model(&model.Report{}).
		Where("report_id = ? AND status = ?", reportID, string(domain.ReportStatusCollecting)).
		Updates(map[string]interface{}{
			"raw_metrics": metrics,
			"status":      string(domain.ReportStatusAnalyzing),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update raw metrics: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("report %s not found or not in collecting state: %w", reportID, domain.ErrInvalidTransition)
	}
	return nil
}

// Complete stores the analysis payload and moves the report from
// analyzing to complete.
func (r *ReportRepository) Complete(ctx context.Context, reportID string, analysis *model.AnalysisPayload) error {
	result := r.ds.DB(ctx).Model(&model.Report{}).
		Where("report_id = ? AND status = ?", reportID, string(domain.ReportStatusAnalyzing)).
		Updates(map[string]interface{}{
			"analysis": analysis,
			"status":   string(domain.ReportStatusComplete),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to complete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("report %s not found or not in analyzing state: %w", reportID, domain.ErrInvalidTransition)
	}
	return nil
}

// Fail moves a non-terminal report to error with a captured message
func (r *ReportRepository) Fail(ctx context.Context, reportID string, message string) error {
	result := r.ds.DB(ctx).Model(&model.Report{}).
		Where("report_id = ? AND status IN ?", reportID, nonTerminalStatuses()).
		Updates(map[string]interface{}{
			"status":        string(domain.ReportStatusError),
			"error_message": message,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to fail report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("report %s not found or already terminal: %w", reportID, domain.ErrInvalidTransition)
	}
	return nil
}

// List returns a page of reports ordered newest first, plus the total count
func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]*model.Report, int64, error) {
	var total int64
	if err := r.ds.DB(ctx).Model(&model.Report{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	var reports []*model.Report
	err := r.ds.DB(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	return reports, total, nil
}

// FailStale errors out reports stuck in a non-terminal state longer
// than olderThan. Covers runs abandoned by a process crash.
func (r *ReportRepository) FailStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	result := r.ds.DB(ctx).Model(&model.Report{}).
		Where("status IN ? AND updated_at < ?", nonTerminalStatuses(), cutoff).
		Updates(map[string]interface{}{
			"status":        string(domain.ReportStatusError),
			"error_message": "run abandoned: no progress since " + cutoff.Format(time.RFC3339),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to reap stale reports: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func nonTerminalStatuses() []string {
	return []string{
		string(domain.ReportStatusCollecting),
		string(domain.ReportStatusAnalyzing),
	}
}
