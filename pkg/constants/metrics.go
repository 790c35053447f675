package constants

// Raw metric keys for the weekly overview numbers
const (
	MetricSessions           = "sessions"
	MetricTotalUsers         = "total_users"
	MetricNewUsers           = "new_users"
	MetricBounceRate         = "bounce_rate"
	MetricAvgSessionDuration = "avg_session_duration"
	MetricPageViews          = "page_views"
)

// Conversion event names tracked on the site
const (
	EventClickWhatsApp = "click_whatsapp"
	EventClickPhone    = "click_phone"
	EventClickEmail    = "click_email"
	EventSubmitInquiry = "submit_inquiry"
)

// DefaultEventMetrics maps tracked event names to their raw metric
// keys. Used when no mapping is configured. Every mapped event gets a
// key in raw_metrics, counting 0 when the event is absent from the
// provider's response.
var DefaultEventMetrics = map[string]string{
	EventClickWhatsApp: "whatsapp_clicks",
	EventClickPhone:    "phone_clicks",
	EventClickEmail:    "email_clicks",
	EventSubmitInquiry: "inquiry_submissions",
}

// Hypothesis priorities, highest first
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PriorityRank returns sort rank for a priority value, lower is more
// urgent. Unknown values sort last.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}
