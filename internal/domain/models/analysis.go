package models

// IndicatorRow is one candle augmented with derived technical features.
// Every field is numerically defined for every row: lookback gaps and zero
// denominators are filled with 0 rather than left undefined.
type IndicatorRow struct {
	Candle
	RSI             float64 `json:"rsi"`
	EMAFast         float64 `json:"ema_fast"`
	EMASlow         float64 `json:"ema_slow"`
	MACD            float64 `json:"macd"`
	MACDSignal      float64 `json:"macd_signal"`
	ATR             float64 `json:"atr"`
	Volatility      float64 `json:"volatility"`
	VolumeChange    float64 `json:"volume_change"`
	Returns         float64 `json:"returns"`
	SentimentSignal float64 `json:"sentiment_signal"`
	CompositeScore  float64 `json:"composite_score"`
}

// SignalSet holds the scalar signals blended into the composite score.
// The composite is a snapshot of the current state, broadcast onto the whole
// frame, not a per-bar series.
type SignalSet struct {
	Price     float64 `json:"price"`
	Technical float64 `json:"technical"`
	Sentiment float64 `json:"sentiment"`
	Composite float64 `json:"composite"`
}

// BacktestMetrics is the result of one long/flat simulation.
type BacktestMetrics struct {
	WinRate     float64   `json:"win_rate"`
	MaxDrawdown float64   `json:"max_drawdown"`
	SharpeLike  float64   `json:"sharpe_like"`
	AvgReturn   float64   `json:"avg_return"`
	TradeCount  int       `json:"trade_count"`
	EquityCurve []float64 `json:"equity_curve"`
}

// FeatureImportance pairs a feature name with its global importance.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Prediction is the classifier output for the latest feature row.
type Prediction struct {
	Direction   string              `json:"direction"`
	Confidence  float64             `json:"confidence"`
	TopFeatures []FeatureImportance `json:"top_features"`
}

// TrainReport summarizes one training invocation.
type TrainReport struct {
	Rows     int      `json:"rows"`
	Features []string `json:"features"`
}

// AnalysisResult is the full output of one analysis pass for a symbol.
type AnalysisResult struct {
	Symbol            string            `json:"symbol"`
	Interval          string            `json:"interval"`
	Candles           []Candle          `json:"candles"`
	Indicators        []IndicatorRow    `json:"indicators"`
	SentimentTimeline []SentimentBucket `json:"sentiment_timeline"`
	Signals           SignalSet         `json:"signals"`
}
