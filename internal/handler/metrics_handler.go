package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/supply-desk-api/internal/service"
)

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics   *service.MetricsService
	readiness []func() error
}

// NewMetricsHandler constructs a metrics handler. Readiness checks run on each
// /ready call; any failure flips the probe to 503.
func NewMetricsHandler(metrics *service.MetricsService, readiness ...func() error) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, readiness: readiness}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether downstream dependencies answer.
func (h *MetricsHandler) Ready(c *gin.Context) {
	for _, check := range h.readiness {
		if check == nil {
			continue
		}
		if err := check(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
