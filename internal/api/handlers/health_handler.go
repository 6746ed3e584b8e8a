package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// HealthHandler serves the unauthenticated service descriptors.
type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:      "healthy",
		Version:     h.cfg.AppVersion,
		Environment: h.cfg.Environment,
		Timestamp:   time.Now().UTC(),
	})
}

// Root handles GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, models.RootResponse{
		Name:    h.cfg.AppName,
		Version: h.cfg.AppVersion,
		Docs:    "/docs",
		Health:  "/health",
	})
}
