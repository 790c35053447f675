package model

import "time"

// WeeklyOverview aggregate traffic numbers for one 7-day window
type WeeklyOverview struct {
	Sessions           int64   `json:"sessions"`
	TotalUsers         int64   `json:"total_users"`
	NewUsers           int64   `json:"new_users"`
	BounceRate         float64 `json:"bounce_rate"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
	PageViews          int64   `json:"page_views"`
}

// EventCount occurrence count for one named conversion event
type EventCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// WeeklyData everything the metrics provider returns for one window
type WeeklyData struct {
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Overview  WeeklyOverview `json:"overview"`
	Events    []EventCount   `json:"events"`
}

// EventCountByName returns the count for a named event, 0 if the event
// did not occur in the window.
func (w *WeeklyData) EventCountByName(name string) int64 {
	for _, e := range w.Events {
		if e.Name == name {
			return e.Count
		}
	}
	return 0
}
