package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charterlens/internal/model"
	"charterlens/internal/service"
	"charterlens/pkg/config"
)

// memStore is a minimal in-memory ReportStore for handler tests
type memStore struct {
	reports []*model.AnalyticsReport
	hyps    []*model.Hypothesis
	seq     int
}

func (m *memStore) CreateReport(ctx context.Context, periodStart, periodEnd time.Time) (string, error) {
	m.seq++
	r := &model.AnalyticsReport{
		ID:          fmt.Sprintf("report-%d", m.seq),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      model.ReportStatusCollecting,
	}
	m.reports = append(m.reports, r)
	return r.ID, nil
}

func (m *memStore) UpdateRawMetrics(ctx context.Context, reportID string, metrics map[string]float64) error {
	r := m.get(reportID)
	r.RawMetrics = metrics
	r.Status = model.ReportStatusAnalyzing
	return nil
}

func (m *memStore) CompleteReport(ctx context.Context, reportID string, analysis *model.AnalysisResult) error {
	r := m.get(reportID)
	r.Analysis = analysis
	r.Status = model.ReportStatusComplete
	return nil
}

func (m *memStore) FailReport(ctx context.Context, reportID string, message string) error {
	r := m.get(reportID)
	r.Status = model.ReportStatusError
	r.ErrorMessage = message
	return nil
}

func (m *memStore) InsertHypotheses(ctx context.Context, reportID string, drafts []model.HypothesisDraft) ([]*model.Hypothesis, error) {
	var out []*model.Hypothesis
	for _, d := range drafts {
		m.seq++
		h := &model.Hypothesis{
			ID:       fmt.Sprintf("hyp-%d", m.seq),
			ReportID: reportID,
			Title:    d.Title,
			Priority: d.Priority,
			Status:   model.HypothesisStatusNew,
		}
		m.hyps = append(m.hyps, h)
		out = append(out, h)
	}
	return out, nil
}

func (m *memStore) GetReport(ctx context.Context, reportID string) (*model.AnalyticsReport, error) {
	return m.get(reportID), nil
}

func (m *memStore) ListReports(ctx context.Context, limit, offset int) ([]*model.AnalyticsReport, int64, error) {
	out := make([]*model.AnalyticsReport, 0, len(m.reports))
	for i := len(m.reports) - 1; i >= 0; i-- {
		out = append(out, m.reports[i])
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memStore) ListHypotheses(ctx context.Context, filter model.HypothesisFilter) ([]*model.Hypothesis, error) {
	var out []*model.Hypothesis
	for _, h := range m.hyps {
		if filter.ReportID != "" && h.ReportID != filter.ReportID {
			continue
		}
		if filter.Status != "" && h.Status != filter.Status {
			continue
		}
		out = append(out, h)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) UpdateHypothesis(ctx context.Context, hypothesisID string, update model.HypothesisUpdate) (*model.Hypothesis, error) {
	for _, h := range m.hyps {
		if h.ID == hypothesisID {
			if update.Status != nil {
				h.Status = *update.Status
			}
			if update.Notes != nil {
				h.Notes = *update.Notes
			}
			return h, nil
		}
	}
	return nil, nil
}

func (m *memStore) FailStaleReports(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func (m *memStore) get(reportID string) *model.AnalyticsReport {
	for _, r := range m.reports {
		if r.ID == reportID {
			return r
		}
	}
	return nil
}

type stubNotifier struct {
	enabled bool
	sent    int
}

func (s *stubNotifier) Enabled() bool { return s.enabled }
func (s *stubNotifier) Send(ctx context.Context, report *model.AnalyticsReport, hypotheses []*model.Hypothesis) error {
	s.sent++
	return nil
}

// stubMetrics serves one fixed week of data, or fails every fetch
type stubMetrics struct {
	err error
}

func (s *stubMetrics) FetchWeeklyMetrics(ctx context.Context, startDate, endDate time.Time) (*model.WeeklyData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.WeeklyData{
		StartDate: startDate,
		EndDate:   endDate,
		Overview:  model.WeeklyOverview{Sessions: 1000},
	}, nil
}

type stubEngine struct{}

func (stubEngine) Analyze(ctx context.Context, input *model.AnalysisInput) (*model.AnalysisResult, error) {
	return &model.AnalysisResult{
		Summary: "Steady week.",
		Hypotheses: []model.HypothesisDraft{
			{Title: "Sticky WhatsApp button", Priority: "high"},
		},
	}, nil
}

// collectServer wires a real pipeline service over the given stubs so
// Collect exercises the full run, not a mocked orchestrator.
func collectServer(store *memStore, metrics *stubMetrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	pipeline := service.NewPipelineService(store, metrics, stubEngine{}, &stubNotifier{}, nil, &config.SiteConfig{
		Name: "Azure Horizon Charters",
		Type: "yacht charter marketing site",
	})
	h := NewAnalyticsHandler(pipeline, service.NewReportService(store, &stubNotifier{}))

	engine := gin.New()
	engine.POST("/analytics/collect", h.Collect)
	return engine
}

func seedStore(t *testing.T) *memStore {
	t.Helper()
	store := &memStore{}
	ctx := context.Background()
	id, err := store.CreateReport(ctx,
		time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, store.UpdateRawMetrics(ctx, id, map[string]float64{"sessions": 1000}))
	require.NoError(t, store.CompleteReport(ctx, id, &model.AnalysisResult{Summary: "Steady week."}))
	_, err = store.InsertHypotheses(ctx, id, []model.HypothesisDraft{
		{Title: "Sticky WhatsApp button", Priority: "high"},
	})
	require.NoError(t, err)
	return store
}

func testServer(store *memStore, notifier *stubNotifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reportService := service.NewReportService(store, notifier)
	h := NewAnalyticsHandler(nil, reportService)

	engine := gin.New()
	engine.GET("/analytics/reports", h.ListReports)
	engine.GET("/analytics/reports/:id", h.GetReport)
	engine.GET("/analytics/hypotheses", h.ListHypotheses)
	engine.PATCH("/analytics/hypotheses", h.UpdateHypothesis)
	engine.POST("/analytics/notify", h.Notify)
	return engine
}

func doJSON(engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCollect_ReturnsRunSummary(t *testing.T) {
	store := &memStore{}
	engine := collectServer(store, &stubMetrics{})

	w := doJSON(engine, http.MethodPost, "/analytics/collect", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "report-1", resp["report_id"])
	assert.Equal(t, float64(1), resp["hypotheses_count"])
	assert.Equal(t, string(model.ReportStatusComplete), resp["status"])
}

func TestCollect_FatalFailureReturns500WithReportID(t *testing.T) {
	store := &memStore{}
	engine := collectServer(store, &stubMetrics{err: errors.New("analytics provider returned 500")})

	w := doJSON(engine, http.MethodPost, "/analytics/collect", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pipeline run failed", resp["error"])
	assert.Contains(t, resp["details"], "analytics provider returned 500")
	assert.Equal(t, "collect", resp["stage"])

	// the body points at the persisted error record
	reportID, _ := resp["report_id"].(string)
	require.NotEmpty(t, reportID)
	report, err := store.GetReport(context.Background(), reportID)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, model.ReportStatusError, report.Status)
	assert.Contains(t, report.ErrorMessage, "analytics provider returned 500")
}

func TestListReports_ReturnsPageWithLatestHypotheses(t *testing.T) {
	engine := testServer(seedStore(t), &stubNotifier{})

	w := doJSON(engine, http.MethodGet, "/analytics/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reports          []map[string]interface{} `json:"reports"`
		LatestHypotheses []map[string]interface{} `json:"latest_hypotheses"`
		Total            int64                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Reports, 1)
	require.Len(t, resp.LatestHypotheses, 1)
	assert.Equal(t, "Sticky WhatsApp button", resp.LatestHypotheses[0]["title"])
}

func TestGetReport_NotFoundReturns404(t *testing.T) {
	engine := testServer(seedStore(t), &stubNotifier{})
	w := doJSON(engine, http.MethodGet, "/analytics/reports/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListHypotheses_FiltersByStatus(t *testing.T) {
	engine := testServer(seedStore(t), &stubNotifier{})

	w := doJSON(engine, http.MethodGet, "/analytics/hypotheses?status=new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Hypotheses []map[string]interface{} `json:"hypotheses"`
		Count      int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	w = doJSON(engine, http.MethodGet, "/analytics/hypotheses?status=dismissed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Hypotheses)
}

func TestUpdateHypothesis(t *testing.T) {
	store := seedStore(t)
	engine := testServer(store, &stubNotifier{})

	t.Run("missing id is a bad request", func(t *testing.T) {
		w := doJSON(engine, http.MethodPatch, "/analytics/hypotheses", map[string]string{"status": "testing"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := doJSON(engine, http.MethodPatch, "/analytics/hypotheses", map[string]string{"id": "nope", "status": "testing"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("updates status", func(t *testing.T) {
		w := doJSON(engine, http.MethodPatch, "/analytics/hypotheses", map[string]string{
			"id":     store.hyps[0].ID,
			"status": "testing",
			"notes":  "rolled out to 50% of traffic",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "testing", resp["status"])
		assert.Equal(t, "rolled out to 50% of traffic", resp["notes"])
	})
}

func TestNotify(t *testing.T) {
	store := seedStore(t)

	t.Run("missing body is a bad request", func(t *testing.T) {
		engine := testServer(store, &stubNotifier{enabled: true})
		w := doJSON(engine, http.MethodPost, "/analytics/notify", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown report is 404", func(t *testing.T) {
		engine := testServer(store, &stubNotifier{enabled: true})
		w := doJSON(engine, http.MethodPost, "/analytics/notify", map[string]string{"report_id": "nope"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("disabled notifier is 503", func(t *testing.T) {
		engine := testServer(store, &stubNotifier{enabled: false})
		w := doJSON(engine, http.MethodPost, "/analytics/notify", map[string]string{"report_id": "report-1"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("sends for a complete report", func(t *testing.T) {
		notifier := &stubNotifier{enabled: true}
		engine := testServer(store, notifier)
		w := doJSON(engine, http.MethodPost, "/analytics/notify", map[string]string{"report_id": "report-1"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, notifier.sent)
	})
}
