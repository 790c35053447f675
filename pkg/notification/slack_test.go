package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charterlens/internal/model"
	"charterlens/pkg/config"
)

func sampleReport() *model.AnalyticsReport {
	return &model.AnalyticsReport{
		ID:          "rep-1",
		PeriodStart: time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
		RawMetrics: map[string]float64{
			"sessions":            1000,
			"whatsapp_clicks":     25,
			"inquiry_submissions": 3,
		},
		Status: model.ReportStatusComplete,
		Analysis: &model.AnalysisResult{
			Summary: "Traffic held steady.",
		},
	}
}

func sampleHypotheses() []*model.Hypothesis {
	return []*model.Hypothesis{
		{Title: "Low impact idea", Priority: "low"},
		{Title: "Fix fleet page CTA", Priority: "high"},
		{Title: "Rework destination copy", Priority: "medium"},
		{Title: "Another high one", Priority: "high"},
	}
}

func TestSend_PostsDigestToWebhook(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(&config.NotificationConfig{SlackWebhookURL: server.URL})
	require.True(t, notifier.Enabled())

	err := notifier.Send(context.Background(), sampleReport(), sampleHypotheses())
	require.NoError(t, err)

	var message map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &message))
	assert.Contains(t, message["text"], "Weekly traffic report")
	assert.NotEmpty(t, message["blocks"])

	payload := string(body)
	assert.Contains(t, payload, "Fix fleet page CTA")
	assert.Contains(t, payload, "whatsapp_clicks")
}

func TestSend_WebhookFailureReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(&config.NotificationConfig{SlackWebhookURL: server.URL})
	err := notifier.Send(context.Background(), sampleReport(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNotifier_DisabledWithoutWebhook(t *testing.T) {
	notifier := NewSlackNotifier(&config.NotificationConfig{})
	assert.False(t, notifier.Enabled())

	err := notifier.Send(context.Background(), sampleReport(), nil)
	assert.Error(t, err, "sending while disabled is a caller bug and must not silently pass")
}

func TestTopByPriority_OrdersAndTruncates(t *testing.T) {
	top := topByPriority(sampleHypotheses(), 3)
	require.Len(t, top, 3)
	assert.Equal(t, "Fix fleet page CTA", top[0].Title)
	assert.Equal(t, "Another high one", top[1].Title)
	assert.Equal(t, "Rework destination copy", top[2].Title)
}
