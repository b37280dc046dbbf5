package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

// @Summary Get agency performance
// @Description Score an agency on response time, resolution rate, volume and consistency. Requires API key.
// @Tags Analytics
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Agency ID"
// @Param days query int false "Trailing window in days"
// @Success 200 {object} analytics.Performance
// @Failure 400 {object} ErrorResponse "Invalid agency ID or query"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Agency not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /agencies/{id}/performance [get]
func (h *Handler) agencyPerformance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agency ID"})
		return
	}
	log := h.logger.WithField("method", "agencyPerformance").WithField("id", id)

	var query AnalyticsQuery
	if !h.bindQuery(c, log, &query) {
		return
	}

	perf, err := h.analyticsService.AgencyPerformance(c.Request.Context(), id, query.Days)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, perf)
}

// @Summary Get agency leaderboard
// @Description Rank every agency by performance score. Requires API key.
// @Tags Analytics
// @Produce json
// @Security ApiKeyAuth
// @Param days query int false "Trailing window in days"
// @Success 200 {object} LeaderboardResponse
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /analytics/leaderboard [get]
func (h *Handler) leaderboard(c *gin.Context) {
	var query AnalyticsQuery
	log := h.logger.WithField("method", "leaderboard")

	if !h.bindQuery(c, log, &query) {
		return
	}

	entries, err := h.analyticsService.Leaderboard(c.Request.Context(), query.Days)
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	days := query.Days
	if days == 0 {
		days = h.cfg.AnalyticsWindowDays
	}
	c.JSON(http.StatusOK, LeaderboardResponse{Days: days, Entries: entries})
}

// @Summary Get response time report
// @Description Distribution, anomalous days and trend of response times, overall or for one agency. Requires API key.
// @Tags Analytics
// @Produce json
// @Security ApiKeyAuth
// @Param agency_id query string false "Agency ID"
// @Param days query int false "Trailing window in days"
// @Param threshold query number false "Anomaly z-score threshold" default(2)
// @Param window query int false "Moving average window" default(7)
// @Success 200 {object} service.ResponseTimeReport
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /analytics/response-times [get]
func (h *Handler) responseTimes(c *gin.Context) {
	var query ResponseTimeQuery
	log := h.logger.WithField("method", "responseTimes")

	if !h.bindQuery(c, log, &query) {
		return
	}

	q := service.ResponseTimeQuery{
		Days:      query.Days,
		Threshold: query.Threshold,
		Window:    query.Window,
	}
	if query.AgencyID != "" {
		agencyID := uuid.MustParse(query.AgencyID)
		q.AgencyID = &agencyID
	}

	report, err := h.analyticsService.ResponseTimeReport(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
