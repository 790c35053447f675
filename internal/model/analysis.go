package model

// SiteContext static business context handed to the analysis model
type SiteContext struct {
	SiteName         string   `json:"site_name"`
	SiteType         string   `json:"site_type"`
	ConversionEvents []string `json:"conversion_events"`
	Pages            []string `json:"pages"`
}

// AnalysisInput bundles one run's data for the analysis call.
// PreviousWeek is nil when the comparison baseline could not be fetched.
type AnalysisInput struct {
	CurrentWeek  *WeeklyData `json:"current_week"`
	PreviousWeek *WeeklyData `json:"previous_week,omitempty"`
	Site         SiteContext `json:"site"`
}

// Trends week-over-week movement, one prose line per dimension
type Trends struct {
	Traffic     string `json:"traffic"`
	Engagement  string `json:"engagement"`
	Conversions string `json:"conversions"`
}

// PageInsight per-page observation from the analysis model
type PageInsight struct {
	Page        string `json:"page"`
	Observation string `json:"observation"`
	Suggestion  string `json:"suggestion"`
}

// TrafficAnalysis what drove traffic and what looks worrying
type TrafficAnalysis struct {
	Drivers  string `json:"drivers"`
	Concerns string `json:"concerns"`
}

// HypothesisDraft a hypothesis as produced by the analysis model,
// before ids and timestamps are assigned on insert
type HypothesisDraft struct {
	Title          string `json:"title"`
	Problem        string `json:"problem"`
	Solution       string `json:"solution"`
	ExpectedImpact string `json:"expected_impact"`
	Priority       string `json:"priority"`
	Category       string `json:"category"`
}

// AnalysisResult the full structured output of the analysis stage
type AnalysisResult struct {
	Summary         string            `json:"summary"`
	Trends          Trends            `json:"trends"`
	PageInsights    []PageInsight     `json:"page_insights"`
	TrafficAnalysis TrafficAnalysis   `json:"traffic_analysis"`
	QuickWins       []string          `json:"quick_wins"`
	Hypotheses      []HypothesisDraft `json:"hypotheses"`
}
