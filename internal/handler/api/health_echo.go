package api

import (
	"net/http"
	"time"

	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and dependency readiness.
type HealthHandler struct {
	runs domrepo.RunStore // nil when persistence is disabled
}

func NewHealthHandler(runs domrepo.RunStore) *HealthHandler {
	return &HealthHandler{runs: runs}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Live)
	e.GET("/readyz", h.Ready)
}

func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(c echo.Context) error {
	if h.runs != nil {
		if err := h.runs.Health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
				"at":     time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
