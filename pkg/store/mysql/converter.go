package mysql

import (
	domain "charterlens/internal/model"
	"charterlens/pkg/store/mysql/model"
)

// ToReportDomain converts a MySQL Report row to the domain model
func ToReportDomain(row *model.Report) *domain.AnalyticsReport {
	if row == nil {
		return nil
	}

	report := &domain.AnalyticsReport{
		ID:           row.ReportID,
		PeriodStart:  row.PeriodStart,
		PeriodEnd:    row.PeriodEnd,
		RawMetrics:   map[string]float64(row.RawMetrics),
		Status:       domain.ReportStatus(row.Status),
		ErrorMessage: row.ErrorMessage,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.Analysis != nil {
		result := domain.AnalysisResult(*row.Analysis)
		report.Analysis = &result
	}
	return report
}

// ToReportDomainList converts a slice of Report rows
func ToReportDomainList(rows []*model.Report) []*domain.AnalyticsReport {
	reports := make([]*domain.AnalyticsReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, ToReportDomain(row))
	}
	return reports
}

// ToHypothesisDomain converts a MySQL Hypothesis row to the domain model
func ToHypothesisDomain(row *model.Hypothesis) *domain.Hypothesis {
	if row == nil {
		return nil
	}

	return &domain.Hypothesis{
		ID:             row.HypothesisID,
		ReportID:       row.ReportID,
		Title:          row.Title,
		Problem:        row.Problem,
		Solution:       row.Solution,
		ExpectedImpact: row.ExpectedImpact,
		Priority:       row.Priority,
		Category:       row.Category,
		Status:         row.Status,
		Notes:          row.Notes,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

// ToHypothesisDomainList converts a slice of Hypothesis rows
func ToHypothesisDomainList(rows []*model.Hypothesis) []*domain.Hypothesis {
	hypotheses := make([]*domain.Hypothesis, 0, len(rows))
	for _, row := range rows {
		hypotheses = append(hypotheses, ToHypothesisDomain(row))
	}
	return hypotheses
}
