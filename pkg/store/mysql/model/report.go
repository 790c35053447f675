package model

import "time"

// Report MySQL model for the analytics_reports table
type Report struct {
	ID           int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportID     string           `gorm:"column:report_id;type:varchar(64);not null;uniqueIndex:idx_report_id_unique" json:"report_id"`
	PeriodStart  time.Time        `gorm:"column:period_start;type:date;not null" json:"period_start"`
	PeriodEnd    time.Time        `gorm:"column:period_end;type:date;not null" json:"period_end"`
	RawMetrics   MetricMap        `gorm:"column:raw_metrics;type:json" json:"raw_metrics"`
	Analysis     *AnalysisPayload `gorm:"column:analysis;type:json" json:"analysis,omitempty"`
	Status       string           `gorm:"column:status;type:varchar(32);not null;index:idx_report_status" json:"status"`
	ErrorMessage string           `gorm:"column:error_message;type:text" json:"error_message"`
	CreatedAt    time.Time        `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3);index:idx_report_created_at" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for Report
func (Report) TableName() string {
	return "analytics_reports"
}
