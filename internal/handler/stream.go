package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StreamHandler exposes the live event feed over websocket.
type StreamHandler struct {
	Hub http.Handler
}

func (h *StreamHandler) Register(r *gin.Engine) {
	if h.Hub == nil {
		return
	}
	r.GET("/api/v1/stream", gin.WrapH(h.Hub))
}
