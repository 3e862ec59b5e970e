package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psehrawa/opportunities-finder/internal/models"
)

const readyTimeout = 3 * time.Second

// SourceChecker reports whether every enabled discovery source is healthy.
type SourceChecker interface {
	Healthy(ctx context.Context) (bool, []models.DataSource)
}

// HealthHandler serves liveness and readiness for the opportunity API. The database
// gates readiness; unhealthy sources are reported but do not, since stored
// opportunities stay queryable while an upstream is down.
type HealthHandler struct {
	Service string
	Started time.Time
	Ping    func(ctx context.Context) error
	Sources SourceChecker
}

type healthView struct {
	Status    string  `json:"status"`
	Service   string  `json:"service,omitempty"`
	UptimeSec float64 `json:"uptime_seconds,omitempty"`
}

type readyView struct {
	Status           string              `json:"status"`
	Database         string              `json:"database"`
	UnhealthySources []models.DataSource `json:"unhealthy_sources,omitempty"`
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

// @Summary Liveness with service name and uptime
// @Tags health
// @Success 200 {object} healthView
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	out := healthView{Status: "ok", Service: h.Service}
	if !h.Started.IsZero() {
		out.UptimeSec = time.Since(h.Started).Truncate(time.Second).Seconds()
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Readiness: database reachable, plus unhealthy discovery sources
// @Tags health
// @Success 200 {object} readyView
// @Failure 503 {object} readyView
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	if h.Ping == nil {
		c.JSON(http.StatusServiceUnavailable, readyView{Status: "unavailable", Database: "missing"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()
	if err := h.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, readyView{Status: "unavailable", Database: "unreachable"})
		return
	}
	out := readyView{Status: "ready", Database: "ok"}
	if h.Sources != nil {
		if ok, down := h.Sources.Healthy(ctx); !ok {
			out.Status = "degraded"
			out.UnhealthySources = down
		}
	}
	c.JSON(http.StatusOK, out)
}
