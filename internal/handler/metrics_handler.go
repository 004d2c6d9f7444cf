package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/guru-admin-api/internal/models"
	"github.com/noah-isme/guru-admin-api/pkg/jobs"
)

type metricsSource interface {
	Handler() http.Handler
	Snapshot() models.SystemMetrics
}

// QueueStatsProvider reports the counters of a background queue.
type QueueStatsProvider interface {
	Stats() jobs.Stats
}

// MetricsHandler serves /metrics and /health.
type MetricsHandler struct {
	metrics metricsSource
	queues  map[string]QueueStatsProvider
	started time.Time
}

// NewMetricsHandler builds the handler. queues are reported by name on /health.
func NewMetricsHandler(metrics metricsSource, queues map[string]QueueStatsProvider) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, queues: queues, started: time.Now()}
}

// Prometheus serves the Prometheus exposition format.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health answers liveness probes with process counters and queue backlogs.
func (h *MetricsHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	if len(h.queues) > 0 {
		queues := make(map[string]jobs.Stats, len(h.queues))
		for name, q := range h.queues {
			queues[name] = q.Stats()
		}
		body["queues"] = queues
	}
	c.JSON(http.StatusOK, body)
}
