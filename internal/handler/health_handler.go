package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leafdoc/internal/port"
)

// AnalyzerStatus reports whether the analyzer has a credential.
type AnalyzerStatus interface {
	Configured() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	analyzer AnalyzerStatus
	storage  port.ObjectStorage
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(analyzer AnalyzerStatus, storage port.ObjectStorage) *HealthHandler {
	return &HealthHandler{analyzer: analyzer, storage: storage}
}

// Liveness handles GET /healthz
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
// @Summary Readiness probe
// @Description Ready when the analyzer credential is configured and preview storage is reachable
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	if !h.analyzer.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "analyzer API key not configured"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.storage.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "preview storage not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
