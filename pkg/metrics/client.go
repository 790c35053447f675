package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"charterlens/internal/model"
	"charterlens/pkg/config"
	"charterlens/pkg/logger"
)

const dateLayout = "2006-01-02"

// Overview metric names in request order; parsing below depends on it
var overviewMetrics = []string{
	"sessions",
	"totalUsers",
	"newUsers",
	"bounceRate",
	"averageSessionDuration",
	"screenPageViews",
}

// Client fetches traffic metrics from the analytics provider's
// runReport endpoint. Read-only; errors propagate unchanged so the
// orchestrator decides which windows are fatal.
type Client struct {
	baseURL     string
	propertyID  string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a new metrics provider client
func NewClient(cfg *config.MetricsConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://analyticsdata.googleapis.com"
	}

	return &Client{
		baseURL:     baseURL,
		propertyID:  cfg.PropertyID,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchWeeklyMetrics fetches the overview numbers and the per-event
// counts for an inclusive date range.
func (c *Client) FetchWeeklyMetrics(ctx context.Context, startDate, endDate time.Time) (*model.WeeklyData, error) {
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("invalid date range: %s after %s", startDate.Format(dateLayout), endDate.Format(dateLayout))
	}

	window := dateRange{
		StartDate: startDate.Format(dateLayout),
		EndDate:   endDate.Format(dateLayout),
	}

	overview, err := c.fetchOverview(ctx, window)
	if err != nil {
		return nil, err
	}

	events, err := c.fetchEvents(ctx, window)
	if err != nil {
		return nil, err
	}

	return &model.WeeklyData{
		StartDate: startDate,
		EndDate:   endDate,
		Overview:  *overview,
		Events:    events,
	}, nil
}

func (c *Client) fetchOverview(ctx context.Context, window dateRange) (*model.WeeklyOverview, error) {
	req := &runReportRequest{
		DateRanges: []dateRange{window},
		Metrics:    metricSpecs(overviewMetrics),
	}

	resp, err := c.runReport(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("overview report: %w", err)
	}

	// An untracked property legitimately returns zero rows
	if len(resp.Rows) == 0 {
		return &model.WeeklyOverview{}, nil
	}

	values := resp.Rows[0].MetricValues
	if len(values) < len(overviewMetrics) {
		return nil, fmt.Errorf("overview report: expected %d metric values, got %d", len(overviewMetrics), len(values))
	}

	return &model.WeeklyOverview{
		Sessions:           parseInt(values[0].Value),
		TotalUsers:         parseInt(values[1].Value),
		NewUsers:           parseInt(values[2].Value),
		BounceRate:         parseFloat(values[3].Value),
		AvgSessionDuration: parseFloat(values[4].Value),
		PageViews:          parseInt(values[5].Value),
	}, nil
}

func (c *Client) fetchEvents(ctx context.Context, window dateRange) ([]model.EventCount, error) {
	req := &runReportRequest{
		DateRanges: []dateRange{window},
		Dimensions: []dimension{{Name: "eventName"}},
		Metrics:    []metricSpec{{Name: "eventCount"}},
		Limit:      250,
	}

	resp, err := c.runReport(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("events report: %w", err)
	}

	events := make([]model.EventCount, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) == 0 || len(row.MetricValues) == 0 {
			continue
		}
		events = append(events, model.EventCount{
			Name:  row.DimensionValues[0].Value,
			Count: parseInt(row.MetricValues[0].Value),
		})
	}
	return events, nil
}

// runReport performs one provider call with proper authentication
func (c *Client) runReport(ctx context.Context, reportReq *runReportRequest) (*runReportResponse, error) {
	url := fmt.Sprintf("%s/v1beta/properties/%s:runReport", c.baseURL, c.propertyID)

	jsonData, err := json.Marshal(reportReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metrics provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.WarnCtx(ctx, "metrics provider returned %d: %s", resp.StatusCode, truncate(string(body), 500))
		return nil, fmt.Errorf("metrics provider returned status %d", resp.StatusCode)
	}

	var report runReportResponse
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}
	return &report, nil
}

func metricSpecs(names []string) []metricSpec {
	specs := make([]metricSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, metricSpec{Name: name})
	}
	return specs
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
