package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psehrawa/opportunities-finder/internal/opportunity"
	"github.com/psehrawa/opportunities-finder/internal/repository"
)

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*opportunity.Dashboard, error)
	TimeSeries(ctx context.Context, days int) ([]repository.DailyCount, error)
	Funnel(ctx context.Context) (*opportunity.Funnel, error)
	SourcePerformance(ctx context.Context) ([]repository.SourcePerformance, error)
}

type AnalyticsHandler struct {
	Service AnalyticsService
}

func (h *AnalyticsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/analytics")
	g.GET("/dashboard", h.dashboard)
	g.GET("/timeseries", h.timeseries)
	g.GET("/funnel", h.funnel)
	g.GET("/sources", h.sources)
}

func (h *AnalyticsHandler) ready(c *gin.Context) bool {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return false
	}
	return true
}

// @Summary Totals, breakdowns, top industries and growth
// @Tags analytics
// @Success 200 {object} apiResponse
// @Failure 503 {object} apiResponse
// @Router /api/v1/analytics/dashboard [get]
func (h *AnalyticsHandler) dashboard(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	out, err := h.Service.Dashboard(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, out, nil)
}

// @Summary Daily discovery counts
// @Tags analytics
// @Param days query int false "window in days (default 30, max 365)"
// @Success 200 {object} apiResponse
// @Router /api/v1/analytics/timeseries [get]
func (h *AnalyticsHandler) timeseries(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	days := intQuery(c, "days", 30)
	rows, err := h.Service.TimeSeries(c.Request.Context(), days)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, rows, map[string]any{"days": days})
}

// @Summary Status workflow conversion funnel
// @Tags analytics
// @Success 200 {object} apiResponse
// @Router /api/v1/analytics/funnel [get]
func (h *AnalyticsHandler) funnel(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	out, err := h.Service.Funnel(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, out, nil)
}

// @Summary Per source volume, score, confidence and conversion rate
// @Tags analytics
// @Success 200 {object} apiResponse
// @Router /api/v1/analytics/sources [get]
func (h *AnalyticsHandler) sources(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	rows, err := h.Service.SourcePerformance(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, rows, nil)
}
