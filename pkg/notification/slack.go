package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"charterlens/internal/model"
	"charterlens/pkg/config"
	"charterlens/pkg/constants"
	"charterlens/pkg/logger"
)

const maxDigestHypotheses = 3

// SlackNotifier sends the weekly digest to a Slack incoming webhook.
// An empty webhook URL disables the notifier; callers check Enabled()
// and skip the send rather than erroring.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(cfg *config.NotificationConfig) *SlackNotifier {
	webhookURL := ""
	if cfg != nil {
		webhookURL = cfg.SlackWebhookURL
	}

	if webhookURL == "" {
		logger.Warn("Slack webhook URL not configured (check config file or SLACK_WEBHOOK_URL env), weekly digests will be disabled")
	}

	return &SlackNotifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether notification credentials are configured
func (n *SlackNotifier) Enabled() bool {
	return n.webhookURL != ""
}

// Send posts the digest for a completed report
func (n *SlackNotifier) Send(ctx context.Context, report *model.AnalyticsReport, hypotheses []*model.Hypothesis) error {
	if n.webhookURL == "" {
		return fmt.Errorf("slack webhook URL not configured")
	}

	message := buildDigestMessage(report, hypotheses)

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack API returned status code: %d", resp.StatusCode)
	}

	logger.InfoCtx(ctx, "weekly digest sent for report %s", report.ID)
	return nil
}

// buildDigestMessage builds the Block Kit payload: period, top metrics,
// summary, and the top hypotheses by priority.
func buildDigestMessage(report *model.AnalyticsReport, hypotheses []*model.Hypothesis) map[string]interface{} {
	period := fmt.Sprintf("%s - %s",
		report.PeriodStart.Format("Jan 2"),
		report.PeriodEnd.Format("Jan 2, 2006"))

	blocks := []interface{}{
		map[string]interface{}{
			"type": "header",
			"text": map[string]interface{}{
				"type": "plain_text",
				"text": "📊 Weekly traffic report",
			},
		},
		map[string]interface{}{
			"type": "section",
			"text": map[string]interface{}{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Period*: %s", period),
			},
		},
		map[string]interface{}{
			"type":   "section",
			"fields": metricFields(report.RawMetrics),
		},
	}

	if report.Analysis != nil && report.Analysis.Summary != "" {
		blocks = append(blocks, map[string]interface{}{
			"type": "section",
			"text": map[string]interface{}{
				"type": "mrkdwn",
				"text": report.Analysis.Summary,
			},
		})
	}

	if top := topByPriority(hypotheses, maxDigestHypotheses); len(top) > 0 {
		text := "*Top hypotheses*\n"
		for _, h := range top {
			text += fmt.Sprintf("• [%s] %s\n", h.Priority, h.Title)
		}
		blocks = append(blocks,
			map[string]interface{}{"type": "divider"},
			map[string]interface{}{
				"type": "section",
				"text": map[string]interface{}{
					"type": "mrkdwn",
					"text": text,
				},
			})
	}

	return map[string]interface{}{
		"text":   fmt.Sprintf("Weekly traffic report %s", period),
		"blocks": blocks,
	}
}

func metricFields(metrics map[string]float64) []interface{} {
	keys := []string{
		constants.MetricSessions,
		constants.MetricTotalUsers,
		constants.MetricPageViews,
		"whatsapp_clicks",
		"inquiry_submissions",
		"phone_clicks",
	}

	fields := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		value, ok := metrics[key]
		if !ok {
			continue
		}
		fields = append(fields, map[string]interface{}{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*%s*\n%.0f", key, value),
		})
	}
	return fields
}

// topByPriority returns up to n hypotheses, highest priority first.
// Input order breaks ties so the model's own ranking survives.
func topByPriority(hypotheses []*model.Hypothesis, n int) []*model.Hypothesis {
	sorted := append([]*model.Hypothesis(nil), hypotheses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return constants.PriorityRank(sorted[i].Priority) < constants.PriorityRank(sorted[j].Priority)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
