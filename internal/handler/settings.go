package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/psehrawa/opportunities-finder/internal/paas"
	"github.com/psehrawa/opportunities-finder/internal/service"
)

type SwitchService interface {
	Switches(ctx context.Context) (map[string]bool, error)
	SetEnabled(ctx context.Context, key string, enabled bool) error
}

type SettingsHandler struct {
	Settings SwitchService
}

func (h *SettingsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/settings")
	g.GET("", h.list)
	g.PUT("/:key", h.put)
}

// @Summary List feature switches
// @Tags settings
// @Success 200 {object} apiResponse
// @Router /api/v1/settings [get]
func (h *SettingsHandler) list(c *gin.Context) {
	if h.Settings == nil {
		Error(c, http.StatusInternalServerError, "settings unavailable", nil)
		return
	}
	items, err := h.Settings.Switches(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

type putSwitchRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// @Summary Turn a feature switch on or off
// @Tags settings
// @Accept json
// @Param key path string true "switch key, e.g. feature.source.reddit"
// @Param body body putSwitchRequest true "enabled"
// @Success 200 {object} apiResponse
// @Router /api/v1/settings/{key} [put]
func (h *SettingsHandler) put(c *gin.Context) {
	if h.Settings == nil {
		Error(c, http.StatusInternalServerError, "settings unavailable", nil)
		return
	}
	key := strings.TrimSpace(c.Param("key"))
	if !service.IsFeatureKey(key) {
		Error(c, http.StatusBadRequest, "invalid key", nil)
		return
	}
	var req putSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if err := h.Settings.SetEnabled(c.Request.Context(), key, *req.Enabled); err != nil {
		Fail(c, err)
		return
	}
	paas.LogBestEffort(c, "oppfinder_setting_changed", "info", map[string]any{
		"key":     key,
		"enabled": *req.Enabled,
	})
	Ok(c, gin.H{"key": key, "enabled": *req.Enabled}, nil)
}
