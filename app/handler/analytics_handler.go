package handler

import (
	"errors"
	"net/http"
	"strconv"

	"charterlens/internal/model"
	"charterlens/internal/service"
	"charterlens/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler handles the analytics pipeline HTTP surface
type AnalyticsHandler struct {
	pipelineService *service.PipelineService
	reportService   *service.ReportService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(pipelineService *service.PipelineService, reportService *service.ReportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		pipelineService: pipelineService,
		reportService:   reportService,
	}
}

// Collect runs the full weekly pipeline synchronously
// @Summary Run the weekly analytics pipeline
// @Description Collect metrics, analyze and persist a new weekly report
// @Tags analytics
// @Produce json
// @Success 200 {object} service.RunResult "Run summary"
// @Router /analytics/collect [post]
func (h *AnalyticsHandler) Collect(c *gin.Context) {
	result, err := h.pipelineService.Run(c.Request.Context())
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "pipeline run failed: %v", err)

		var pipelineErr *service.PipelineError
		if errors.As(err, &pipelineErr) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "pipeline run failed",
				"details":   pipelineErr.Err.Error(),
				"stage":     pipelineErr.Stage,
				"report_id": pipelineErr.ReportID,
			})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"report_id":        result.ReportID,
		"hypotheses_count": result.HypothesesCount,
		"status":           result.Status,
		"previous_week":    result.PreviousWeek,
		"notification":     result.Notification,
	})
}

// ListReports retrieves recent reports for the dashboard
// @Summary List recent reports
// @Description Get a page of reports, newest first, with the latest report's hypotheses
// @Tags analytics
// @Produce json
// @Param limit query int false "Number of reports to return (default: 10, max: 50)"
// @Param offset query int false "Number of reports to skip"
// @Success 200 {object} service.ReportListing "Reports page"
// @Router /analytics/reports [get]
func (h *AnalyticsHandler) ListReports(c *gin.Context) {
	limit := parseBoundedInt(c.Query("limit"), 10, 50)
	offset := parseBoundedInt(c.Query("offset"), 0, 1<<30)

	listing, err := h.reportService.ListReports(c.Request.Context(), limit, offset)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// GetReport retrieves one report with its hypotheses
// @Summary Get a report
// @Tags analytics
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} service.ReportDetail "Report with hypotheses"
// @Router /analytics/reports/{id} [get]
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	detail, err := h.reportService.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		logger.ErrorCtx(c.Request.Context(), "failed to get report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListHypotheses retrieves hypotheses with optional filters
// @Summary List hypotheses
// @Tags analytics
// @Produce json
// @Param report_id query string false "Filter by report"
// @Param status query string false "Filter by workflow status"
// @Param limit query int false "Number of hypotheses to return (default: 50, max: 100)"
// @Success 200 {object} map[string]interface{} "Hypotheses list"
// @Router /analytics/hypotheses [get]
func (h *AnalyticsHandler) ListHypotheses(c *gin.Context) {
	filter := model.HypothesisFilter{
		ReportID: c.Query("report_id"),
		Status:   c.Query("status"),
		Limit:    parseBoundedInt(c.Query("limit"), 50, 100),
	}

	hypotheses, err := h.reportService.ListHypotheses(c.Request.Context(), filter)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list hypotheses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if hypotheses == nil {
		hypotheses = []*model.Hypothesis{}
	}

	c.JSON(http.StatusOK, gin.H{
		"hypotheses": hypotheses,
		"count":      len(hypotheses),
	})
}

// updateHypothesisRequest operator review update
type updateHypothesisRequest struct {
	ID     string  `json:"id" binding:"required"`
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// UpdateHypothesis applies a review update to one hypothesis
// @Summary Update a hypothesis
// @Description Change workflow status and/or operator notes
// @Tags analytics
// @Accept json
// @Produce json
// @Success 200 {object} model.Hypothesis "Updated hypothesis"
// @Router /analytics/hypotheses [patch]
func (h *AnalyticsHandler) UpdateHypothesis(c *gin.Context) {
	var req updateHypothesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	hypothesis, err := h.reportService.UpdateHypothesis(c.Request.Context(), req.ID, model.HypothesisUpdate{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "hypothesis not found"})
			return
		}
		logger.ErrorCtx(c.Request.Context(), "failed to update hypothesis %s: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, hypothesis)
}

// notifyRequest digest re-send request
type notifyRequest struct {
	ReportID string `json:"report_id" binding:"required"`
}

// Notify re-sends the digest for a completed report
// @Summary Re-send a report digest
// @Tags analytics
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Delivery confirmation"
// @Router /analytics/notify [post]
func (h *AnalyticsHandler) Notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report_id is required"})
		return
	}

	err := h.reportService.ResendNotification(c.Request.Context(), req.ReportID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"report_id": req.ReportID, "sent": true})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
	case errors.Is(err, service.ErrNotificationsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications are not configured"})
	case errors.Is(err, service.ErrReportNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "report is not complete"})
	default:
		logger.ErrorCtx(c.Request.Context(), "failed to re-send digest for %s: %v", req.ReportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parseBoundedInt parses a positive query int with a default and cap
func parseBoundedInt(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return def
	}
	if value > max {
		return max
	}
	return value
}
