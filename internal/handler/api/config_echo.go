package api

import (
	"github.com/katheedev/crypto-sentiment/internal/service/auth"
	"github.com/katheedev/crypto-sentiment/internal/usecase"
	xhttp "github.com/katheedev/crypto-sentiment/pkg/http"
	xlogger "github.com/katheedev/crypto-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ConfigHandler exposes runtime config overrides behind token auth.
type ConfigHandler struct {
	logger  *xlogger.Logger
	runtime *usecase.RuntimeConfig
	auth    *auth.Service
}

func NewConfigHandler(logger *xlogger.Logger, runtime *usecase.RuntimeConfig, svc *auth.Service) *ConfigHandler {
	return &ConfigHandler{logger: logger, runtime: runtime, auth: svc}
}

func (h *ConfigHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/config", RequireToken(h.auth, h.logger))
	g.GET("", h.Get)
	g.PUT("/:section", h.Put)
	g.DELETE("", h.Reset)
}

type configOverrideRequest struct {
	Value string `json:"value" validate:"required"`
}

func (h *ConfigHandler) Get(c echo.Context) error {
	settings, err := h.runtime.Effective(c.Request().Context())
	if err != nil {
		h.logger.Error("config resolve error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	overrides, err := h.runtime.Overrides(c.Request().Context())
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"effective": settings,
		"overrides": overrides,
	})
}

func (h *ConfigHandler) Put(c echo.Context) error {
	section := c.Param("section")
	req := &configOverrideRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.runtime.Set(c.Request().Context(), section, req.Value); err != nil {
		h.logger.Warn("config override rejected",
			xlogger.String("section", section), xlogger.Error(err))
		return xhttp.BadRequestResponse(c, err.Error())
	}
	h.logger.Info("config override stored", xlogger.String("section", section))
	return xhttp.SuccessResponse(c, map[string]string{"status": "stored"})
}

func (h *ConfigHandler) Reset(c echo.Context) error {
	if err := h.runtime.Reset(c.Request().Context()); err != nil {
		h.logger.Error("config reset error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.logger.Info("config overrides reset")
	return xhttp.SuccessResponse(c, map[string]string{"status": "reset"})
}
