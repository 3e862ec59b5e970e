package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psehrawa/opportunities-finder/internal/discovery"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/paas"
)

type DiscoveryService interface {
	DiscoverAll(ctx context.Context, req discovery.Request) discovery.PassResult
	DiscoverFromSource(ctx context.Context, name string, req discovery.Request) ([]models.Opportunity, error)
	HealthOfAll(ctx context.Context) map[models.DataSource]health.Status
	EnabledSources(ctx context.Context) []string
	Healthy(ctx context.Context) (bool, []models.DataSource)
	Sources(ctx context.Context) []discovery.SourceInfo
	MirrorStates(ctx context.Context, store discovery.StateStore, pass *discovery.PassResult) int
}

type RateResetter interface {
	Reset(ctx context.Context, source models.DataSource) error
}

type DiscoveryHandler struct {
	Discovery     DiscoveryService
	Opportunities OpportunityService
	Rates         RateResetter
	States        discovery.StateStore

	// Defaults applied to trigger requests that leave fields empty.
	DefaultSince time.Duration
	DefaultLimit int
	Lookback     time.Duration
}

func (h *DiscoveryHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/discovery")
	g.POST("/trigger", h.trigger)
	g.POST("/trigger/:source", h.triggerSource)
	g.POST("/scoring/trigger", h.triggerScoring)
	g.GET("/health", h.health)
	g.GET("/sources", h.sources)
	g.GET("/stats", h.stats)
	g.POST("/sources/:source/rate-limit/reset", h.resetRateLimit)
}

type triggerRequest struct {
	Countries  []string `json:"countries"`
	SinceHours int      `json:"since_hours"`
	Limit      int      `json:"limit"`
}

func (h *DiscoveryHandler) request(c *gin.Context) (discovery.Request, bool) {
	var body triggerRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return discovery.Request{}, false
		}
	}
	req := discovery.Request{Limit: body.Limit}
	for _, raw := range body.Countries {
		ct, ok := models.ParseCountry(raw)
		if !ok {
			Error(c, http.StatusBadRequest, "unknown country "+strings.TrimSpace(raw), nil)
			return discovery.Request{}, false
		}
		req.Countries = append(req.Countries, ct)
	}
	since := time.Duration(body.SinceHours) * time.Hour
	if since <= 0 {
		since = h.DefaultSince
	}
	if since <= 0 {
		since = 24 * time.Hour
	}
	req.Since = time.Now().UTC().Add(-since)
	if req.Limit <= 0 {
		req.Limit = h.DefaultLimit
	}
	return req, true
}

// @Summary Run a discovery pass across enabled sources
// @Tags discovery
// @Accept json
// @Param body body triggerRequest false "countries, since_hours, limit"
// @Success 200 {object} apiResponse
// @Router /api/v1/discovery/trigger [post]
func (h *DiscoveryHandler) trigger(c *gin.Context) {
	if h.Discovery == nil {
		Error(c, http.StatusInternalServerError, "discovery unavailable", nil)
		return
	}
	req, ok := h.request(c)
	if !ok {
		return
	}
	res := h.Discovery.DiscoverAll(c.Request.Context(), req)
	h.Discovery.MirrorStates(c.Request.Context(), h.States, &res)
	Ok(c, res, nil)
}

// @Summary Run discovery for one source and persist the results
// @Tags discovery
// @Accept json
// @Param source path string true "source name, e.g. github"
// @Param body body triggerRequest false "countries, since_hours, limit"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/discovery/trigger/{source} [post]
func (h *DiscoveryHandler) triggerSource(c *gin.Context) {
	if h.Discovery == nil || h.Opportunities == nil {
		Error(c, http.StatusInternalServerError, "discovery unavailable", nil)
		return
	}
	req, ok := h.request(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Param("source"))
	items, err := h.Discovery.DiscoverFromSource(c.Request.Context(), name, req)
	if err != nil {
		Fail(c, err)
		return
	}
	saved, failed := 0, 0
	for _, o := range items {
		if _, err := h.Opportunities.Save(c.Request.Context(), o); err != nil {
			failed++
			continue
		}
		saved++
	}
	Ok(c, gin.H{"source": name, "discovered": len(items), "saved": saved, "failed": failed}, nil)
}

// @Summary Score unscored opportunities now
// @Tags discovery
// @Param hours query int false "lookback in hours"
// @Success 200 {object} apiResponse
// @Router /api/v1/discovery/scoring/trigger [post]
func (h *DiscoveryHandler) triggerScoring(c *gin.Context) {
	if h.Opportunities == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	lookback := h.Lookback
	if hours := intQuery(c, "hours", 0); hours > 0 {
		lookback = time.Duration(hours) * time.Hour
	}
	Ok(c, h.Opportunities.ScoreUnscored(c.Request.Context(), lookback), nil)
}

// @Summary Per-source health
// @Tags discovery
// @Success 200 {object} apiResponse
// @Router /api/v1/discovery/health [get]
func (h *DiscoveryHandler) health(c *gin.Context) {
	if h.Discovery == nil {
		Error(c, http.StatusInternalServerError, "discovery unavailable", nil)
		return
	}
	ctx := c.Request.Context()
	healthy, unhealthy := h.Discovery.Healthy(ctx)
	status := "UP"
	if !healthy {
		status = "DEGRADED"
	}
	Ok(c, gin.H{
		"status":    status,
		"healthy":   healthy,
		"unhealthy": unhealthy,
		"sources":   h.Discovery.HealthOfAll(ctx),
	}, nil)
}

// @Summary Registered sources with rate budgets
// @Tags discovery
// @Success 200 {object} apiResponse
// @Router /api/v1/discovery/sources [get]
func (h *DiscoveryHandler) sources(c *gin.Context) {
	if h.Discovery == nil {
		Error(c, http.StatusInternalServerError, "discovery unavailable", nil)
		return
	}
	ctx := c.Request.Context()
	Ok(c, gin.H{
		"enabled": h.Discovery.EnabledSources(ctx),
		"sources": h.Discovery.Sources(ctx),
	}, nil)
}

// @Summary Opportunity counts by source, status and type
// @Tags discovery
// @Success 200 {object} apiResponse
// @Router /api/v1/discovery/stats [get]
func (h *DiscoveryHandler) stats(c *gin.Context) {
	if h.Opportunities == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	stats, err := h.Opportunities.Stats(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, stats, nil)
}

// @Summary Reset a source's hourly rate budget
// @Tags discovery
// @Param source path string true "source name"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/discovery/sources/{source}/rate-limit/reset [post]
func (h *DiscoveryHandler) resetRateLimit(c *gin.Context) {
	if h.Rates == nil {
		Error(c, http.StatusInternalServerError, "rate governor unavailable", nil)
		return
	}
	src, ok := models.ParseDataSource(c.Param("source"))
	if !ok {
		Error(c, http.StatusNotFound, "unknown source", nil)
		return
	}
	if err := h.Rates.Reset(c.Request.Context(), src); err != nil {
		Fail(c, err)
		return
	}
	paas.LogBestEffort(c, "oppfinder_rate_limit_reset", "info", map[string]any{
		"source": src,
	})
	Ok(c, gin.H{"source": src, "reset": true}, nil)
}
