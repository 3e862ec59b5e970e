package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/opportunity"
	"github.com/psehrawa/opportunities-finder/internal/repository"
)

// OpportunityService is the slice of opportunity.Manager the HTTP API needs.
type OpportunityService interface {
	Search(ctx context.Context, params repository.ListOpportunitiesParams) ([]models.Opportunity, int64, error)
	Trending(ctx context.Context, window time.Duration, minScore decimal.Decimal, limit int) ([]models.Opportunity, error)
	Unscored(ctx context.Context, window time.Duration, limit int) ([]models.Opportunity, error)
	Get(ctx context.Context, id uint64) (*models.Opportunity, error)
	Save(ctx context.Context, o models.Opportunity) (*models.Opportunity, error)
	UpdateStatus(ctx context.Context, id uint64, status models.OpportunityStatus) (*models.Opportunity, error)
	UpdateScore(ctx context.Context, id uint64, score decimal.Decimal) (*models.Opportunity, error)
	Engage(ctx context.Context, id uint64) (*models.Opportunity, error)
	Discard(ctx context.Context, id uint64) (*models.Opportunity, error)
	Deactivate(ctx context.Context, id uint64) error
	ScoreUnscored(ctx context.Context, lookback time.Duration) opportunity.ScoringResult
	Stats(ctx context.Context) (map[string][]repository.GroupCount, error)
}

type OpportunityHandler struct {
	Service OpportunityService
}

func (h *OpportunityHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/opportunities")
	g.GET("", h.list)
	g.POST("/search", h.search)
	g.GET("/trending", h.trending)
	g.GET("/unscored", h.unscored)
	g.GET("/:id", h.get)
	g.PUT("/:id/status", h.updateStatus)
	g.PUT("/:id/score", h.updateScore)
	g.POST("/:id/engage", h.engage)
	g.POST("/:id/discard", h.discard)
	g.DELETE("/:id", h.deactivate)
}

// @Summary List opportunities
// @Tags opportunities
// @Param type query string false "opportunity types, comma separated"
// @Param status query string false "statuses, comma separated"
// @Param source query string false "sources, comma separated"
// @Param country query string false "countries, comma separated"
// @Param industry query string false "industries, comma separated"
// @Param min_score query number false "minimum score"
// @Param max_score query number false "maximum score"
// @Param search query string false "title, description or company"
// @Param tag query string false "tags, comma separated"
// @Param active query bool false "active only (default true)"
// @Param sort_by query string false "score|discovered_at|confidence_score|funding_amount|title|company_name"
// @Param order query string false "asc|desc"
// @Param limit query int false "page size (max 100)"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities [get]
func (h *OpportunityHandler) list(c *gin.Context) {
	h.respondSearch(c, criteriaFromQuery(c))
}

// @Summary Search opportunities
// @Tags opportunities
// @Accept json
// @Param body body searchCriteria true "criteria"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities/search [post]
func (h *OpportunityHandler) search(c *gin.Context) {
	var req searchCriteria
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	h.respondSearch(c, req)
}

func (h *OpportunityHandler) respondSearch(c *gin.Context, criteria searchCriteria) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	params, err := criteria.params()
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	items, total, err := h.Service.Search(c.Request.Context(), params)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

// @Summary Trending opportunities
// @Tags opportunities
// @Param hours query int false "window in hours (default 24)"
// @Param min_score query number false "minimum score (default 70)"
// @Param limit query int false "limit (max 100)"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities/trending [get]
func (h *OpportunityHandler) trending(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	minScore := decimal.NewFromInt(70)
	if v := decimalQueryPtr(c, "min_score"); v != nil {
		minScore = *v
	}
	window := hoursQuery(c, "hours", 24)
	items, err := h.Service.Trending(c.Request.Context(), window, minScore, pageLimit(intQuery(c, "limit", 20)))
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"hours": int(window.Hours()), "min_score": minScore})
}

// @Summary Unscored opportunities
// @Tags opportunities
// @Param hours query int false "window in hours (default 24)"
// @Param limit query int false "limit (max 100)"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities/unscored [get]
func (h *OpportunityHandler) unscored(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Service.Unscored(c.Request.Context(), hoursQuery(c, "hours", 24), pageLimit(intQuery(c, "limit", maxPageSize)))
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Get opportunity
// @Tags opportunities
// @Param id path int true "opportunity id"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/opportunities/{id} [get]
func (h *OpportunityHandler) get(c *gin.Context) {
	h.withID(c, func(ctx context.Context, id uint64) (any, error) {
		return h.Service.Get(ctx, id)
	})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Update opportunity status
// @Tags opportunities
// @Accept json
// @Param id path int true "opportunity id"
// @Param body body statusRequest true "new status"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities/{id}/status [put]
func (h *OpportunityHandler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	h.withID(c, func(ctx context.Context, id uint64) (any, error) {
		return h.Service.UpdateStatus(ctx, id, models.OpportunityStatus(req.Status))
	})
}

type scoreRequest struct {
	Score decimal.Decimal `json:"score"`
}

// @Summary Override opportunity score
// @Tags opportunities
// @Accept json
// @Param id path int true "opportunity id"
// @Param body body scoreRequest true "score, clamped to 0..100"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities/{id}/score [put]
func (h *OpportunityHandler) updateScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	h.withID(c, func(ctx context.Context, id uint64) (any, error) {
		return h.Service.UpdateScore(ctx, id, req.Score)
	})
}

// @Summary Mark opportunity engaged
// @Tags opportunities
// @Param id path int true "opportunity id"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities/{id}/engage [post]
func (h *OpportunityHandler) engage(c *gin.Context) {
	h.withID(c, func(ctx context.Context, id uint64) (any, error) {
		return h.Service.Engage(ctx, id)
	})
}

// @Summary Discard opportunity
// @Tags opportunities
// @Param id path int true "opportunity id"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities/{id}/discard [post]
func (h *OpportunityHandler) discard(c *gin.Context) {
	h.withID(c, func(ctx context.Context, id uint64) (any, error) {
		return h.Service.Discard(ctx, id)
	})
}

// @Summary Deactivate opportunity
// @Tags opportunities
// @Param id path int true "opportunity id"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities/{id} [delete]
func (h *OpportunityHandler) deactivate(c *gin.Context) {
	h.withID(c, func(ctx context.Context, id uint64) (any, error) {
		if err := h.Service.Deactivate(ctx, id); err != nil {
			return nil, err
		}
		return gin.H{"id": id, "is_active": false}, nil
	})
}

func (h *OpportunityHandler) withID(c *gin.Context, fn func(ctx context.Context, id uint64) (any, error)) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := parseID(c)
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	out, err := fn(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, out, nil)
}
