package api

import (
	"time"

	models "github.com/katheedev/crypto-sentiment/internal/domain/models"
	"github.com/katheedev/crypto-sentiment/internal/service/auth"
	"github.com/katheedev/crypto-sentiment/internal/service/metrics"
	"github.com/katheedev/crypto-sentiment/internal/service/ratelimit"
	"github.com/katheedev/crypto-sentiment/internal/usecase"
	xhttp "github.com/katheedev/crypto-sentiment/pkg/http"
	xlogger "github.com/katheedev/crypto-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisHandler exposes the analysis pipeline over Echo.
type AnalysisHandler struct {
	logger     *xlogger.Logger
	analyzer   *usecase.Analyzer
	backtester *usecase.Backtester
	predictor  *usecase.Predictor
	auth       *auth.Service
	rl         *ratelimit.Limiter
	rlCapacity float64
	rlRefill   float64
}

func NewAnalysisHandler(
	logger *xlogger.Logger,
	analyzer *usecase.Analyzer,
	backtester *usecase.Backtester,
	predictor *usecase.Predictor,
	authSvc *auth.Service,
	rlCapacity float64,
	rlRefill float64,
) *AnalysisHandler {
	metrics.Register()
	return &AnalysisHandler{
		logger:     logger,
		analyzer:   analyzer,
		backtester: backtester,
		predictor:  predictor,
		auth:       authSvc,
		rl:         ratelimit.New(),
		rlCapacity: rlCapacity,
		rlRefill:   rlRefill,
	}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/symbols", h.Symbols)
	g.GET("/analyze", h.Analyze)
	g.GET("/predict", h.Predict)
	g.POST("/train", h.Train, RequireToken(h.auth, h.logger))
	g.POST("/backtest", h.Backtest)
}

func (h *AnalysisHandler) allow(c echo.Context, endpoint string) bool {
	if h.rl == nil || h.rlCapacity <= 0 {
		return true
	}
	if h.rl.Allow(c.RealIP()+":"+endpoint, h.rlCapacity, h.rlRefill) {
		return true
	}
	h.logger.Warn("rate limited",
		xlogger.String("endpoint", endpoint),
		xlogger.String("remote", c.RealIP()),
	)
	return false
}

func (h *AnalysisHandler) Symbols(c echo.Context) error {
	req := &models.SymbolsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbols, err := h.analyzer.Symbols(c.Request().Context(), req.Query)
	if err != nil {
		h.logger.Error("symbols usecase error", xlogger.Error(err))
		metrics.AnalysisErrors.WithLabelValues("symbols").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, symbols)
}

func (h *AnalysisHandler) Analyze(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AnalysisLatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()
	if !h.allow(c, "analyze") {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("analyze usecase error",
			xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		metrics.AnalysisErrors.WithLabelValues("analyze").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=30")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Predict(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AnalysisLatency.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	}()
	if !h.allow(c, "predict") {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.predictor.Predict(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("predict usecase error",
			xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		metrics.AnalysisErrors.WithLabelValues("predict").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Train(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AnalysisLatency.WithLabelValues("train").Observe(time.Since(start).Seconds())
	}()

	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	// Prefer async training when a job queue is wired.
	queued, err := h.predictor.EnqueueTrain(c.Request().Context(), *req)
	if err != nil {
		h.logger.Warn("train enqueue failed, training inline", xlogger.Error(err))
	}
	if queued {
		return xhttp.SuccessResponse(c, map[string]string{"status": "queued"})
	}

	res, err := h.predictor.Train(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("train usecase error",
			xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		metrics.AnalysisErrors.WithLabelValues("train").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Backtest(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AnalysisLatency.WithLabelValues("backtest").Observe(time.Since(start).Seconds())
	}()
	if !h.allow(c, "backtest") {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.backtester.Run(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("backtest usecase error",
			xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		metrics.AnalysisErrors.WithLabelValues("backtest").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
