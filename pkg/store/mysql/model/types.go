package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	domain "charterlens/internal/model"
)

// MetricMap JSON column holding metric name -> numeric value
type MetricMap map[string]float64

// Value implements driver.Valuer for MetricMap
func (m MetricMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for MetricMap
func (m *MetricMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	bytes, err := toBytes(value)
	if err != nil {
		return fmt.Errorf("failed to scan MetricMap: %w", err)
	}

	var out map[string]float64
	if err := json.Unmarshal(bytes, &out); err != nil {
		return fmt.Errorf("failed to unmarshal MetricMap: %w", err)
	}
	*m = out
	return nil
}

// AnalysisPayload JSON column holding the full analysis result
// (summary, trends, page insights, traffic analysis, quick wins)
type AnalysisPayload domain.AnalysisResult

// Value implements driver.Valuer for AnalysisPayload
func (p *AnalysisPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for AnalysisPayload
func (p *AnalysisPayload) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, err := toBytes(value)
	if err != nil {
		return fmt.Errorf("failed to scan AnalysisPayload: %w", err)
	}

	var out AnalysisPayload
	if err := json.Unmarshal(bytes, &out); err != nil {
		return fmt.Errorf("failed to unmarshal AnalysisPayload: %w", err)
	}
	*p = out
	return nil
}

func toBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}
