package model

import "github.com/katheedev/crypto-sentiment/internal/domain/models"

// FeatureColumns is the fixed, ordered feature vector the classifier is
// trained on. Artifacts persist this list so a stale artifact is detectable.
var FeatureColumns = []string{
	"returns",
	"rsi",
	"macd",
	"macd_signal",
	"atr",
	"volatility",
	"volume_change",
	"sentiment_signal",
	"composite_score",
}

// Vector extracts the feature values of one row in FeatureColumns order.
func Vector(r models.IndicatorRow) []float64 {
	return []float64{
		r.Returns,
		r.RSI,
		r.MACD,
		r.MACDSignal,
		r.ATR,
		r.Volatility,
		r.VolumeChange,
		r.SentimentSignal,
		r.CompositeScore,
	}
}
