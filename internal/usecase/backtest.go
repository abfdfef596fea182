package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	"github.com/katheedev/crypto-sentiment/internal/services/backtest"
	applogger "github.com/katheedev/crypto-sentiment/pkg/logger"
)

// Backtester replays the composite signal through the long/flat simulator
// and records the outcome.
type Backtester struct {
	analyzer *Analyzer
	runs     domrepo.RunStore
	l        *applogger.Logger
}

func NewBacktester(analyzer *Analyzer, runs domrepo.RunStore, l *applogger.Logger) *Backtester {
	return &Backtester{analyzer: analyzer, runs: runs, l: l}
}

// Run builds the indicator frame for the request and simulates it with the
// effective backtest parameters.
func (b *Backtester) Run(ctx context.Context, req models.BacktestRequest) (*models.BacktestMetrics, error) {
	iv := domrepo.NormalizeInterval(req.Interval)
	limit := req.Limit
	if limit <= 0 {
		limit = 300
	}

	frame, settings, err := b.analyzer.Frame(ctx, req.Symbol, iv, limit)
	if err != nil {
		return nil, err
	}

	params := backtest.Params{
		LongThreshold:  settings.Backtest.LongThreshold,
		ShortThreshold: settings.Backtest.ShortThreshold,
		InitialCash:    settings.Backtest.InitialCash,
		FeeBps:         settings.Backtest.FeeBps,
	}
	metrics := backtest.Run(frame, params)

	b.persist(ctx, req, params, metrics)

	b.l.Info("backtest complete",
		applogger.String("symbol", req.Symbol),
		applogger.String("interval", string(iv)),
		applogger.Int("trades", metrics.TradeCount),
		applogger.Float64("win_rate", metrics.WinRate),
	)
	return &metrics, nil
}

func (b *Backtester) persist(ctx context.Context, req models.BacktestRequest, params backtest.Params, metrics models.BacktestMetrics) {
	if b.runs == nil {
		return
	}
	paramsJSON, err := json.Marshal(map[string]interface{}{
		"symbol":          req.Symbol,
		"interval":        req.Interval,
		"limit":           req.Limit,
		"long_threshold":  params.LongThreshold,
		"short_threshold": params.ShortThreshold,
		"initial_cash":    params.InitialCash,
		"fee_bps":         params.FeeBps,
	})
	if err != nil {
		return
	}
	// Equity curve is dropped from the stored record to keep rows small.
	stored := metrics
	stored.EquityCurve = nil
	metricsJSON, err := json.Marshal(stored)
	if err != nil {
		return
	}
	rec := domrepo.BacktestRecord{
		Params:    string(paramsJSON),
		Metrics:   string(metricsJSON),
		CreatedAt: time.Now().UTC(),
	}
	if err := b.runs.SaveBacktest(ctx, rec); err != nil {
		b.l.Warn("backtest persist failed", applogger.Error(err))
	}
}
