package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports service liveness and knowledge index readiness.
func (h *ChatHandler) Health(c *gin.Context) {
	status := h.service.Health(c.Request.Context())
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    statusLabel(status.Ready),
		"ready":     status.Ready,
		"doc_count": status.DocCount,
	})
}

func statusLabel(ready bool) string {
	if ready {
		return "ok"
	}
	return "degraded"
}
