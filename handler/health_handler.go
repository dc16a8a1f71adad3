package handler

import (
	"context"
	"net/http"
	"time"

	"noteshelf/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db        Pinger
	logger    *zap.Logger
	startedAt time.Time
}

func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger, startedAt: time.Now()}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	dbStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check: database unreachable", zap.Error(err))
		status = http.StatusServiceUnavailable
		dbStatus = "unavailable"
	}

	body := gin.H{
		"status":         dbStatus,
		"database":       dbStatus,
		"uptime":         time.Since(h.startedAt).Round(time.Second).String(),
		"cpu_percent":    utils.GetCPUUsage(),
		"memory_percent": utils.GetMemoryUsage(),
	}
	c.JSON(status, body)
}
