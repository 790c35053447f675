package service

import (
	"context"
	"errors"
	"fmt"

	"charterlens/internal/model"
	"charterlens/pkg/interfaces"
	"charterlens/pkg/logger"
)

var (
	// ErrNotFound means the requested report or hypothesis does not exist
	ErrNotFound = errors.New("record not found")
	// ErrNotificationsDisabled means no webhook is configured
	ErrNotificationsDisabled = errors.New("notifications are not configured")
	// ErrReportNotReady means the report has no analysis to send yet
	ErrReportNotReady = errors.New("report is not complete")
)

// ReportListing is the dashboard payload: a page of reports plus the
// hypotheses of the most recent report in that page.
type ReportListing struct {
	Reports          []*model.AnalyticsReport `json:"reports"`
	LatestHypotheses []*model.Hypothesis      `json:"latest_hypotheses"`
	Total            int64                    `json:"total"`
}

// ReportDetail is a single report with its hypotheses
type ReportDetail struct {
	Report     *model.AnalyticsReport `json:"report"`
	Hypotheses []*model.Hypothesis    `json:"hypotheses"`
}

// ReportService serves the read and review surface over stored reports
type ReportService struct {
	store    interfaces.ReportStore
	notifier interfaces.Notifier
}

// NewReportService creates a new report service
func NewReportService(store interfaces.ReportStore, notifier interfaces.Notifier) *ReportService {
	return &ReportService{
		store:    store,
		notifier: notifier,
	}
}

// ListReports returns a page of reports, newest first, together with
// the hypotheses attached to the newest report in the page.
func (s *ReportService) ListReports(ctx context.Context, limit, offset int) (*ReportListing, error) {
	reports, total, err := s.store.ListReports(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	listing := &ReportListing{
		Reports:          reports,
		LatestHypotheses: []*model.Hypothesis{},
		Total:            total,
	}

	if len(reports) > 0 {
		hypotheses, err := s.store.ListHypotheses(ctx, model.HypothesisFilter{
			ReportID: reports[0].ID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load latest hypotheses: %w", err)
		}
		listing.LatestHypotheses = hypotheses
	}
	return listing, nil
}

// GetReport returns one report with its hypotheses
func (s *ReportService) GetReport(ctx context.Context, reportID string) (*ReportDetail, error) {
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, ErrNotFound
	}

	hypotheses, err := s.store.ListHypotheses(ctx, model.HypothesisFilter{ReportID: reportID})
	if err != nil {
		return nil, fmt.Errorf("failed to load hypotheses: %w", err)
	}
	return &ReportDetail{Report: report, Hypotheses: hypotheses}, nil
}

// ListHypotheses returns hypotheses filtered by report and status
func (s *ReportService) ListHypotheses(ctx context.Context, filter model.HypothesisFilter) ([]*model.Hypothesis, error) {
	hypotheses, err := s.store.ListHypotheses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list hypotheses: %w", err)
	}
	return hypotheses, nil
}

// UpdateHypothesis applies a review update (status and/or notes)
func (s *ReportService) UpdateHypothesis(ctx context.Context, id string, update model.HypothesisUpdate) (*model.Hypothesis, error) {
	hypothesis, err := s.store.UpdateHypothesis(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update hypothesis: %w", err)
	}
	if hypothesis == nil {
		return nil, ErrNotFound
	}
	return hypothesis, nil
}

// ResendNotification re-sends the digest for an already completed
// report, for when the original delivery degraded or the channel
// changed.
func (s *ReportService) ResendNotification(ctx context.Context, reportID string) error {
	if s.notifier == nil || !s.notifier.Enabled() {
		return ErrNotificationsDisabled
	}

	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return ErrNotFound
	}
	if report.Status != model.ReportStatusComplete {
		return ErrReportNotReady
	}

	hypotheses, err := s.store.ListHypotheses(ctx, model.HypothesisFilter{ReportID: reportID})
	if err != nil {
		return fmt.Errorf("failed to load hypotheses: %w", err)
	}

	if err := s.notifier.Send(ctx, report, hypotheses); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	logger.InfoCtx(ctx, "digest re-sent for report %s", reportID)
	return nil
}
