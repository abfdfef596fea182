package signal

import (
	"fmt"
	"math"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
)

const epsDenom = 1e-9

// Weights blend the three scalar signals. They are unconstrained and need
// not sum to 1.
type Weights struct {
	Price     float64
	Technical float64
	Sentiment float64
}

// Compose blends price momentum, technical momentum, and the scalar
// sentiment signal into one composite score and writes both the sentiment
// signal and the composite as constant columns across every row. The
// composite is a snapshot of the current state reused across the returned
// frame, not a re-derived per-bar series.
func Compose(frame []models.IndicatorRow, sentimentSignal float64, w Weights) ([]models.IndicatorRow, models.SignalSet, error) {
	if len(frame) == 0 {
		return nil, models.SignalSet{}, fmt.Errorf("compose: empty indicator frame")
	}

	price := priceSignal(frame)
	latest := frame[len(frame)-1]
	technical := (latest.MACD - latest.MACDSignal) / math.Max(math.Abs(latest.Close), epsDenom)

	composite := w.Price*price + w.Technical*technical + w.Sentiment*sentimentSignal

	for i := range frame {
		frame[i].SentimentSignal = sentimentSignal
		frame[i].CompositeScore = composite
	}

	return frame, models.SignalSet{
		Price:     price,
		Technical: technical,
		Sentiment: sentimentSignal,
		Composite: composite,
	}, nil
}

// priceSignal is the mean of the most recent 5 returns, or fewer when the
// frame is shorter.
func priceSignal(frame []models.IndicatorRow) float64 {
	n := len(frame)
	k := 5
	if n < k {
		k = n
	}
	var sum float64
	for i := n - k; i < n; i++ {
		sum += frame[i].Returns
	}
	return sum / float64(k)
}
