package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	domservice "github.com/katheedev/crypto-sentiment/internal/domain/service"
	svcmetrics "github.com/katheedev/crypto-sentiment/internal/service/metrics"
	"github.com/katheedev/crypto-sentiment/internal/services/indicators"
	"github.com/katheedev/crypto-sentiment/internal/services/sentiment"
	"github.com/katheedev/crypto-sentiment/internal/services/signal"
	"github.com/katheedev/crypto-sentiment/pkg/cache"
	applogger "github.com/katheedev/crypto-sentiment/pkg/logger"
)

// Analyzer runs the full analysis pass for one symbol: candles, indicators,
// sentiment timeline, and composite signals.
type Analyzer struct {
	market  domservice.MarketDataSource
	social  domservice.SocialSource
	scorer  domservice.PostScorer
	runtime *RuntimeConfig

	cache    cache.Service
	cacheTTL time.Duration

	runs    domrepo.RunStore
	pub     domrepo.RunPublisher
	metrics domrepo.Metrics
	l       *applogger.Logger

	extraKeywords []string
}

// AnalyzerOption configures optional Analyzer collaborators.
type AnalyzerOption func(*Analyzer)

// WithRunStore persists completed runs.
func WithRunStore(rs domrepo.RunStore) AnalyzerOption {
	return func(a *Analyzer) { a.runs = rs }
}

// WithRunPublisher emits run events to a broker.
func WithRunPublisher(p domrepo.RunPublisher) AnalyzerOption {
	return func(a *Analyzer) { a.pub = p }
}

// WithCache caches analysis results.
func WithCache(c cache.Service, ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithExtraKeywords adds configured keywords to every social search.
func WithExtraKeywords(words []string) AnalyzerOption {
	return func(a *Analyzer) { a.extraKeywords = words }
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(
	market domservice.MarketDataSource,
	social domservice.SocialSource,
	scorer domservice.PostScorer,
	runtime *RuntimeConfig,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	opts ...AnalyzerOption,
) *Analyzer {
	a := &Analyzer{
		market:   market,
		social:   social,
		scorer:   scorer,
		runtime:  runtime,
		metrics:  metrics,
		l:        l,
		cacheTTL: time.Minute,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces the full result for one symbol and interval. Results are
// cached per (symbol, interval, limit); social failures degrade to an empty
// timeline instead of failing the run.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error) {
	start := time.Now()
	iv := domrepo.NormalizeInterval(req.Interval)
	limit := req.Limit
	if limit <= 0 {
		limit = 200
	}

	cacheKey := cache.Key("analysis", req.Symbol, iv, limit)
	if a.cache != nil {
		var cached string
		if err := a.cache.Get(ctx, cacheKey, &cached); err == nil {
			var result models.AnalysisResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return &result, nil
			}
		}
	}

	settings, err := a.runtime.Effective(ctx)
	if err != nil {
		a.l.Warn("runtime config fallback to defaults", applogger.Error(err))
	}

	frame, timeline, candles, err := a.buildFrame(ctx, req.Symbol, iv, limit, settings)
	if err != nil {
		a.metrics.RecordError("analyze")
		svcmetrics.AnalysisErrors.WithLabelValues("analyze").Inc()
		return nil, err
	}

	sentimentSignal := sentiment.Signal(timeline)
	frame, signals, err := signal.Compose(frame, sentimentSignal, signal.Weights{
		Price:     settings.Weights.Price,
		Technical: settings.Weights.Technical,
		Sentiment: settings.Weights.Sentiment,
	})
	if err != nil {
		a.metrics.RecordError("analyze")
		return nil, err
	}

	// Response carries at most the trailing 200 indicator rows.
	tail := frame
	if len(tail) > 200 {
		tail = tail[len(tail)-200:]
	}
	result := &models.AnalysisResult{
		Symbol:            req.Symbol,
		Interval:          string(iv),
		Candles:           candles,
		Indicators:        tail,
		SentimentTimeline: timeline,
		Signals:           signals,
	}

	a.record(ctx, result)
	a.metrics.RecordRun(req.Symbol, string(iv))
	a.metrics.RecordLastPrice(req.Symbol, candles[len(candles)-1].Close)
	elapsed := time.Since(start)
	a.metrics.RecordLatency("analyze", elapsed.Seconds())
	svcmetrics.AnalysisLatency.WithLabelValues("analyze").Observe(elapsed.Seconds())

	if a.cache != nil {
		if b, err := json.Marshal(result); err == nil {
			_ = a.cache.Set(ctx, cacheKey, string(b), a.cacheTTL)
		}
	}

	a.l.Info("analysis run complete",
		applogger.String("symbol", req.Symbol),
		applogger.String("interval", string(iv)),
		applogger.Int("candles", len(candles)),
		applogger.Int("buckets", len(timeline)),
		applogger.Float64("composite", signals.Composite),
		applogger.Duration("elapsed_ms", elapsed),
	)
	return result, nil
}

// Frame computes the composite-annotated indicator frame without the
// AnalysisResult envelope. Backtest and model training build on this.
func (a *Analyzer) Frame(ctx context.Context, symbol string, iv domrepo.Interval, limit int) ([]models.IndicatorRow, Settings, error) {
	settings, err := a.runtime.Effective(ctx)
	if err != nil {
		a.l.Warn("runtime config fallback to defaults", applogger.Error(err))
	}

	frame, timeline, _, err := a.buildFrame(ctx, symbol, iv, limit, settings)
	if err != nil {
		return nil, settings, err
	}
	frame, _, err = signal.Compose(frame, sentiment.Signal(timeline), signal.Weights{
		Price:     settings.Weights.Price,
		Technical: settings.Weights.Technical,
		Sentiment: settings.Weights.Sentiment,
	})
	if err != nil {
		return nil, settings, err
	}
	return frame, settings, nil
}

// Symbols proxies symbol discovery to the market source.
func (a *Analyzer) Symbols(ctx context.Context, query string) ([]string, error) {
	return a.market.SearchSymbols(ctx, query)
}

// InvalidateCache drops cached results for a symbol after fresh market data
// arrives.
func (a *Analyzer) InvalidateCache(ctx context.Context, symbol string, iv domrepo.Interval) {
	if a.cache == nil {
		return
	}
	// Common request limits; a coarse sweep is fine since entries expire anyway.
	for _, limit := range []int{200, 300, 500} {
		_ = a.cache.Delete(ctx, cache.Key("analysis", symbol, iv, limit))
	}
}

func (a *Analyzer) buildFrame(ctx context.Context, symbol string, iv domrepo.Interval, limit int, settings Settings) ([]models.IndicatorRow, []models.SentimentBucket, []models.Candle, error) {
	candles, err := a.market.GetOHLCV(ctx, symbol, string(iv), limit)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, nil, nil, fmt.Errorf("no candles for %s/%s", symbol, iv)
	}

	frame := indicators.Compute(candles, indicators.Params{
		RSIPeriod:          settings.Indicators.RSIPeriod,
		EMAFast:            settings.Indicators.EMAFast,
		EMASlow:            settings.Indicators.EMASlow,
		MACDSignalPeriod:   settings.Indicators.MACDSignal,
		ATRPeriod:          settings.Indicators.ATRPeriod,
		VolatilityWindow:   settings.Indicators.VolatilityWindow,
		VolumeChangeWindow: settings.Indicators.VolumeWindow,
	})

	keywords := sentiment.Keywords(symbol, a.extraKeywords)
	posts, err := a.social.FetchPosts(ctx, keywords, limit)
	if err != nil {
		a.l.Warn("social fetch failed, continuing without sentiment",
			applogger.String("symbol", symbol), applogger.Error(err))
		posts = nil
	}
	scored := a.scorer.Score(posts)
	timeline := sentiment.Aggregate(scored, domrepo.IntervalMinutes(iv))

	return frame, timeline, candles, nil
}

// record persists and publishes the run, best effort.
func (a *Analyzer) record(ctx context.Context, result *models.AnalysisResult) {
	summary, err := json.Marshal(result.Signals)
	if err != nil {
		return
	}
	run := domrepo.Run{
		Symbol:    result.Symbol,
		Interval:  result.Interval,
		Summary:   string(summary),
		CreatedAt: time.Now().UTC(),
	}
	if a.runs != nil {
		if err := a.runs.SaveRun(ctx, run); err != nil {
			a.l.Warn("run persist failed", applogger.Error(err))
		}
	}
	if a.pub != nil {
		if err := a.pub.PublishRun(ctx, run); err != nil {
			a.l.Warn("run publish failed", applogger.Error(err))
		}
	}
}
