package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psehrawa/opportunities-finder/internal/discovery"
	"github.com/psehrawa/opportunities-finder/internal/opportunity"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// Fail maps domain errors onto HTTP statuses. Anything unrecognised is a bad gateway,
// since it came from a backing store.
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, opportunity.ErrNotFound), errors.Is(err, discovery.ErrSourceNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, opportunity.ErrInvalidStatus):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, opportunity.ErrAnalyticsUnavailable):
		Error(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
