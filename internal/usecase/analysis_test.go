package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	"github.com/katheedev/crypto-sentiment/internal/services/sentiment"
	"github.com/katheedev/crypto-sentiment/pkg/cache"
	"github.com/katheedev/crypto-sentiment/pkg/config"
	applogger "github.com/katheedev/crypto-sentiment/pkg/logger"
)

type fakeMarket struct {
	candles []models.Candle
	calls   int
}

func (f *fakeMarket) SearchSymbols(_ context.Context, query string) ([]string, error) {
	return []string{"BTCUSDT"}, nil
}

func (f *fakeMarket) GetOHLCV(_ context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	f.calls++
	return f.candles, nil
}

type fakeSocial struct {
	posts []models.Post
}

func (f *fakeSocial) FetchPosts(context.Context, []string, int) ([]models.Post, error) {
	return f.posts, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordRun(string, string)          {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordLatency(string, float64)     {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	price := 100.0
	for i := range out {
		open := price
		price += float64(i%5) - 2
		out[i] = models.Candle{
			OpenTime:  int64(1700000000+i*3600) * 1000,
			Open:      open,
			High:      price + 2,
			Low:       open - 2,
			Close:     price,
			Volume:    1000 + float64(i),
			CloseTime: int64(1700000000+(i+1)*3600)*1000 - 1,
		}
	}
	return out
}

func defaultSettings(t *testing.T) Settings {
	t.Helper()
	var cfg config.Config
	cfg.Analysis.Weights.Price = 0.4
	cfg.Analysis.Weights.Technical = 0.3
	cfg.Analysis.Weights.Sentiment = 0.3
	cfg.Analysis.Indicators.RSIPeriod = 14
	cfg.Analysis.Indicators.EMAFast = 12
	cfg.Analysis.Indicators.EMASlow = 26
	cfg.Analysis.Indicators.MACDSignal = 9
	cfg.Analysis.Indicators.ATRPeriod = 14
	cfg.Analysis.Indicators.VolatilityWindow = 20
	cfg.Analysis.Indicators.VolumeWindow = 1
	cfg.Analysis.Model.Horizon = 3
	cfg.Analysis.Model.NumTrees = 20
	cfg.Analysis.Model.MaxDepth = 5
	cfg.Analysis.Model.Seed = 42
	cfg.Analysis.Backtest.LongThreshold = 0.2
	cfg.Analysis.Backtest.ShortThreshold = -0.2
	cfg.Analysis.Backtest.InitialCash = 10000
	cfg.Analysis.Backtest.FeeBps = 10
	return SettingsFromConfig(&cfg)
}

func newTestAnalyzer(t *testing.T, market *fakeMarket, social *fakeSocial, opts ...AnalyzerOption) *Analyzer {
	t.Helper()
	runtime := NewRuntimeConfig(defaultSettings(t), nil)
	return NewAnalyzer(market, social, sentiment.NewVaderScorer(), runtime, nopMetrics{}, testLogger(t), opts...)
}

func TestAnalyzeProducesFullResult(t *testing.T) {
	market := &fakeMarket{candles: testCandles(60)}
	social := &fakeSocial{posts: []models.Post{
		{Text: "bullish breakout, great momentum", CreatedAt: int64(1700000100)},
		{Text: "terrible crash incoming", CreatedAt: int64(1700000200)},
	}}
	a := newTestAnalyzer(t, market, social)

	res, err := a.Analyze(context.Background(), models.AnalyzeRequest{Symbol: "BTCUSDT", Interval: "1h", Limit: 60})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Symbol != "BTCUSDT" || res.Interval != "1h" {
		t.Fatalf("unexpected envelope: %s %s", res.Symbol, res.Interval)
	}
	if len(res.Candles) != 60 || len(res.Indicators) != 60 {
		t.Fatalf("expected 60 rows, got %d candles %d indicators", len(res.Candles), len(res.Indicators))
	}
	if len(res.SentimentTimeline) == 0 {
		t.Fatalf("expected non-empty sentiment timeline")
	}
	want := 0.4*res.Signals.Price + 0.3*res.Signals.Technical + 0.3*res.Signals.Sentiment
	if diff := res.Signals.Composite - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("composite %v != weighted blend %v", res.Signals.Composite, want)
	}
	for _, row := range res.Indicators {
		if row.CompositeScore != res.Signals.Composite {
			t.Fatalf("composite not broadcast: %v vs %v", row.CompositeScore, res.Signals.Composite)
		}
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	market := &fakeMarket{candles: testCandles(30)}
	mem := cache.NewMemoryCache()
	defer mem.Close()
	a := newTestAnalyzer(t, market, &fakeSocial{}, WithCache(mem, time.Minute))

	req := models.AnalyzeRequest{Symbol: "BTCUSDT", Interval: "1h", Limit: 30}
	if _, err := a.Analyze(context.Background(), req); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	if _, err := a.Analyze(context.Background(), req); err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if market.calls != 1 {
		t.Fatalf("expected 1 market call with warm cache, got %d", market.calls)
	}

	a.InvalidateCache(context.Background(), "BTCUSDT", domrepo.IV1h)
	if _, err := a.Analyze(context.Background(), req); err != nil {
		t.Fatalf("third analyze: %v", err)
	}
	if market.calls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d calls", market.calls)
	}
}

func TestAnalyzeEmptyCandlesFails(t *testing.T) {
	a := newTestAnalyzer(t, &fakeMarket{}, &fakeSocial{})
	if _, err := a.Analyze(context.Background(), models.AnalyzeRequest{Symbol: "NOPE", Interval: "1h"}); err == nil {
		t.Fatalf("expected error for empty candle response")
	}
}

func TestBacktesterRuns(t *testing.T) {
	market := &fakeMarket{candles: testCandles(80)}
	a := newTestAnalyzer(t, market, &fakeSocial{})
	b := NewBacktester(a, nil, testLogger(t))

	metrics, err := b.Run(context.Background(), models.BacktestRequest{Symbol: "BTCUSDT", Interval: "1h", Limit: 80})
	if err != nil {
		t.Fatalf("backtest: %v", err)
	}
	if len(metrics.EquityCurve) != 80 {
		t.Fatalf("expected equity point per bar, got %d", len(metrics.EquityCurve))
	}
	if metrics.WinRate < 0 || metrics.WinRate > 1 {
		t.Fatalf("win rate out of range: %v", metrics.WinRate)
	}
	if metrics.MaxDrawdown < 0 {
		t.Fatalf("negative drawdown: %v", metrics.MaxDrawdown)
	}
}

func TestPredictorTrainAndPredict(t *testing.T) {
	market := &fakeMarket{candles: testCandles(120)}
	a := newTestAnalyzer(t, market, &fakeSocial{})
	store := &memModelStore{data: map[string][]byte{}}
	p := NewPredictor(a, store, nil, testLogger(t))

	report, err := p.Train(context.Background(), models.TrainRequest{Symbol: "BTCUSDT", Interval: "1h", Limit: 120})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if report.Rows != 117 {
		t.Fatalf("expected 117 labeled rows (120 - horizon 3), got %d", report.Rows)
	}

	pred, err := p.Predict(context.Background(), models.PredictRequest{Symbol: "BTCUSDT", Interval: "1h"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Direction != "up" && pred.Direction != "down" {
		t.Fatalf("unexpected direction %q", pred.Direction)
	}
	if pred.Confidence < 0.5 || pred.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", pred.Confidence)
	}
}

type memModelStore struct {
	data map[string][]byte
}

func (m *memModelStore) Save(symbol string, iv domrepo.Interval, artifact []byte) error {
	m.data[symbol+"/"+string(iv)] = append([]byte(nil), artifact...)
	return nil
}

func (m *memModelStore) Load(symbol string, iv domrepo.Interval) ([]byte, bool, error) {
	b, ok := m.data[symbol+"/"+string(iv)]
	return b, ok, nil
}
