package model

import "time"

// Hypothesis MySQL model for the hypotheses table.
// Descriptive columns are written once on insert; only status, notes
// and updated_at change afterwards.
type Hypothesis struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	HypothesisID   string    `gorm:"column:hypothesis_id;type:varchar(64);not null;uniqueIndex:idx_hypothesis_id_unique" json:"hypothesis_id"`
	ReportID       string    `gorm:"column:report_id;type:varchar(64);not null;index:idx_hypothesis_report" json:"report_id"`
	Title          string    `gorm:"column:title;type:varchar(512);not null" json:"title"`
	Problem        string    `gorm:"column:problem;type:text" json:"problem"`
	Solution       string    `gorm:"column:solution;type:text" json:"solution"`
	ExpectedImpact string    `gorm:"column:expected_impact;type:text" json:"expected_impact"`
	Priority       string    `gorm:"column:priority;type:varchar(32);index:idx_hypothesis_priority" json:"priority"`
	Category       string    `gorm:"column:category;type:varchar(64)" json:"category"`
	Status         string    `gorm:"column:status;type:varchar(64);not null;index:idx_hypothesis_status" json:"status"`
	Notes          string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt      time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for Hypothesis
func (Hypothesis) TableName() string {
	return "hypotheses"
}
