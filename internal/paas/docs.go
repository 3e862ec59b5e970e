package paas

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Opportunity Finder

Discovers funding, launch, hiring and trend signals from GitHub, Reddit, RSS feeds and
insider posts, scores them and serves the ranked set.

## Auth

All /api/* routes require a Bearer token, validated by the gateway in front of this service.
Health endpoints are public.

## Routes

- GET /healthz
- GET /readyz
- GET /swagger/index.html
- GET /api/v1/stream (websocket)
- GET /api/v1/opportunities
- POST /api/v1/opportunities/search
- GET /api/v1/opportunities/trending
- GET /api/v1/opportunities/unscored
- GET /api/v1/opportunities/{id}
- PUT /api/v1/opportunities/{id}/status
- PUT /api/v1/opportunities/{id}/score
- POST /api/v1/opportunities/{id}/engage
- POST /api/v1/opportunities/{id}/discard
- DELETE /api/v1/opportunities/{id}
- GET /api/v1/analytics/dashboard
- GET /api/v1/analytics/timeseries
- GET /api/v1/analytics/funnel
- GET /api/v1/analytics/sources
- POST /api/v1/discovery/trigger
- POST /api/v1/discovery/trigger/{source}
- POST /api/v1/discovery/scoring/trigger
- GET /api/v1/discovery/health
- GET /api/v1/discovery/sources
- GET /api/v1/discovery/stats
- POST /api/v1/discovery/sources/{source}/rate-limit/reset
- GET /api/v1/settings
- PUT /api/v1/settings/{key}
`)
	})
}
