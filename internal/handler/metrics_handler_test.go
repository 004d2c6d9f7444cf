package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/service"
	"github.com/noah-isme/guru-admin-api/pkg/jobs"
)

type fixedQueueStats jobs.Stats

func (f fixedQueueStats) Stats() jobs.Stats { return jobs.Stats(f) }

func TestMetricsHandlerHealthIncludesQueues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(service.NewMetricsService(), map[string]QueueStatsProvider{
		"database_backup": fixedQueueStats{Processed: 4, Failed: 1, Pending: 2},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	h.Health(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string                 `json:"status"`
		Queues map[string]jobs.Stats  `json:"queues"`
		Metric map[string]interface{} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, jobs.Stats{Processed: 4, Failed: 1, Pending: 2}, body.Queues["database_backup"])
	assert.Contains(t, body.Metric, "requests_total")
}

func TestMetricsHandlerPrometheusWithoutSource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	h.Prometheus(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
