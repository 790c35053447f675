package model

import (
	"errors"
	"time"
)

// ErrInvalidTransition reports a status update that found the report
// missing or not in the expected state. The state machine only moves
// forward, so retrying such an update can never succeed.
var ErrInvalidTransition = errors.New("invalid report status transition")

// ReportStatus report lifecycle status
type ReportStatus string

const (
	ReportStatusCollecting ReportStatus = "collecting"
	ReportStatusAnalyzing  ReportStatus = "analyzing"
	ReportStatusComplete   ReportStatus = "complete"
	ReportStatusError      ReportStatus = "error"
)

// IsTerminal reports whether the status allows no further transitions
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusComplete || s == ReportStatusError
}

// AnalyticsReport one persisted pipeline run over a 7-day window
type AnalyticsReport struct {
	ID           string             `json:"id"`
	PeriodStart  time.Time          `json:"period_start"`
	PeriodEnd    time.Time          `json:"period_end"`
	RawMetrics   map[string]float64 `json:"raw_metrics"`
	Analysis     *AnalysisResult    `json:"analysis,omitempty"`
	Status       ReportStatus       `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// HypothesisStatusNew initial workflow status for freshly inserted hypotheses.
// Later values are free-form and owned by the operator, not the pipeline.
const HypothesisStatusNew = "new"

// Hypothesis an actionable improvement suggestion tied to one report.
// Descriptive fields are immutable after insert; only Status, Notes and
// UpdatedAt change afterwards.
type Hypothesis struct {
	ID             string    `json:"id"`
	ReportID       string    `json:"report_id"`
	Title          string    `json:"title"`
	Problem        string    `json:"problem"`
	Solution       string    `json:"solution"`
	ExpectedImpact string    `json:"expected_impact"`
	Priority       string    `json:"priority"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HypothesisFilter optional equality filters for hypothesis listing
type HypothesisFilter struct {
	ReportID string
	Status   string
	Limit    int
}

// HypothesisUpdate operator-editable fields; nil means "leave unchanged"
type HypothesisUpdate struct {
	Status *string
	Notes  *string
}
