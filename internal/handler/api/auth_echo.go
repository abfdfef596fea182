package api

import (
	"strings"

	models "github.com/katheedev/crypto-sentiment/internal/domain/models"
	"github.com/katheedev/crypto-sentiment/internal/service/auth"
	xhttp "github.com/katheedev/crypto-sentiment/pkg/http"
	xlogger "github.com/katheedev/crypto-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AuthHandler issues tokens for the admin config API.
type AuthHandler struct {
	logger    *xlogger.Logger
	auth      *auth.Service
	adminUser string
	adminPass string
}

func NewAuthHandler(logger *xlogger.Logger, svc *auth.Service, adminUser, adminPass string) *AuthHandler {
	return &AuthHandler{logger: logger, auth: svc, adminUser: adminUser, adminPass: adminPass}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/token", h.Token)
}

func (h *AuthHandler) Token(c echo.Context) error {
	req := &models.TokenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.auth.Enabled() || h.adminPass == "" {
		return xhttp.UnauthorizedResponse(c, "authentication is not configured")
	}
	if req.Username != h.adminUser || req.Password != h.adminPass {
		h.logger.Warn("auth rejected", xlogger.String("username", req.Username))
		return xhttp.UnauthorizedResponse(c, "invalid credentials")
	}

	token, err := h.auth.Issue(req.Username)
	if err != nil {
		h.logger.Error("token issue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// RequireToken guards a route group with bearer token verification. With auth
// disabled (no secret) the guard rejects everything, keeping the admin
// surface closed by default.
func RequireToken(svc *auth.Service, logger *xlogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return xhttp.UnauthorizedResponse(c, "missing bearer token")
			}
			subject, err := svc.Verify(token)
			if err != nil {
				logger.Warn("token rejected", xlogger.Error(err))
				return xhttp.UnauthorizedResponse(c, "invalid token")
			}
			c.Set("subject", subject)
			return next(c)
		}
	}
}
