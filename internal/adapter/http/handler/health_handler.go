package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitml/exoserve/internal/domain/repository"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	service  string
	registry repository.ModelRegistry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service string, registry repository.ModelRegistry) *HealthHandler {
	return &HealthHandler{
		service:  service,
		registry: registry,
	}
}

// HealthStatus represents the root health check response
type HealthStatus struct {
	Status            string   `json:"status"`
	Service           string   `json:"service"`
	AvailableDatasets []string `json:"available_datasets"`
}

// Root handles GET /. It succeeds whenever the process is alive and reads
// only the static configuration, never the model cache.
func (h *HealthHandler) Root(c *gin.Context) {
	types := h.registry.DatasetTypes()
	datasets := make([]string, len(types))
	for i, dt := range types {
		datasets[i] = string(dt)
	}

	c.JSON(http.StatusOK, HealthStatus{
		Status:            "healthy",
		Service:           h.service,
		AvailableDatasets: datasets,
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	components := make(map[string]string)
	healthy := true

	for _, dt := range h.registry.DatasetTypes() {
		status := h.registry.Describe(dt)
		switch {
		case status.ModelExists && status.PreprocessorExists:
			components[string(dt)] = "ok"
		default:
			components[string(dt)] = "missing artifacts"
			healthy = false
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":     status,
		"components": components,
	})
}

// Ready handles GET /ready. The process is ready when every configured
// artifact pair is present on disk.
func (h *HealthHandler) Ready(c *gin.Context) {
	for _, dt := range h.registry.DatasetTypes() {
		status := h.registry.Describe(dt)
		if !status.ModelExists || !status.PreprocessorExists {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "artifacts missing for dataset type " + string(dt),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
