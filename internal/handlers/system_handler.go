package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inventory-ledger/internal/logging"
)

const healthTimeout = 2 * time.Second

// Health reports liveness plus whether the database answers.
func (h *Handler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if h.ping != nil {
		pctx, cancel := context.WithTimeout(ctx(c), healthTimeout)
		defer cancel()
		if err := h.ping(pctx); err != nil {
			logging.WithContext(ctx(c)).WithError(err).Warn("health check: database unreachable")
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"products": len(h.ledger.Snapshot().Products),
		"time":     h.now().UTC(),
	})
}
