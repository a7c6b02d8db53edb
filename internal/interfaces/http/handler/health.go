package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Check reports whether a dependency is reachable
type Check func(ctx context.Context) error

// HealthHandler reports database and, when configured, Redis health
type HealthHandler struct {
	db      Check
	redis   Check
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil.
func NewHealthHandler(db, redis Check, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, timeout: 2 * time.Second, logger: logger}
}

// Health answers 200 when every dependency responds and 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "healthy", Database: "up"}
	status := http.StatusOK

	if err := h.db(ctx); err != nil {
		logger.Enrich(ctx, h.logger).Error("Database health check failed", zap.Error(err))
		resp.Status, resp.Database = "unhealthy", "down"
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		resp.Redis = "up"
		if err := h.redis(ctx); err != nil {
			logger.Enrich(ctx, h.logger).Error("Redis health check failed", zap.Error(err))
			resp.Status, resp.Redis = "unhealthy", "down"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, resp)
}
