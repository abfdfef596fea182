package signal

import (
	"math"
	"testing"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
)

func frameWithReturns(returns []float64) []models.IndicatorRow {
	rows := make([]models.IndicatorRow, len(returns))
	for i, r := range returns {
		rows[i].Close = 100
		rows[i].Returns = r
	}
	return rows
}

func TestComposeZeroInputsZeroComposite(t *testing.T) {
	frame := frameWithReturns([]float64{0, 0, 0, 0, 0, 0})
	_, sig, err := Compose(frame, 0, Weights{Price: 1, Technical: 1, Sentiment: 1})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if sig.Composite != 0 {
		t.Fatalf("expected composite 0, got %v", sig.Composite)
	}
}

func TestComposeLinearInWeights(t *testing.T) {
	frame := frameWithReturns([]float64{0.01, 0.02, -0.01, 0.03, 0.02, 0.01})
	frame[len(frame)-1].MACD = 0.5
	frame[len(frame)-1].MACDSignal = 0.2

	w := Weights{Price: 0.3, Technical: 0.5, Sentiment: 0.2}
	_, base, err := Compose(cloneFrame(frame), 0.4, w)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	const k = 3.5
	_, scaled, err := Compose(cloneFrame(frame), 0.4, Weights{Price: k * w.Price, Technical: k * w.Technical, Sentiment: k * w.Sentiment})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if math.Abs(scaled.Composite-k*base.Composite) > 1e-12 {
		t.Fatalf("expected composite to scale linearly: %v vs %v", scaled.Composite, k*base.Composite)
	}
}

func TestComposePriceSignalUsesLastFiveReturns(t *testing.T) {
	frame := frameWithReturns([]float64{9, 9, 0.1, 0.2, 0.3, 0.4, 0.5})
	_, sig, err := Compose(frame, 0, Weights{Price: 1})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if math.Abs(sig.Price-0.3) > 1e-12 {
		t.Fatalf("expected price signal 0.3, got %v", sig.Price)
	}
}

func TestComposeShortFrameUsesAllReturns(t *testing.T) {
	frame := frameWithReturns([]float64{0.2, 0.4})
	_, sig, err := Compose(frame, 0, Weights{Price: 1})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if math.Abs(sig.Price-0.3) > 1e-12 {
		t.Fatalf("expected price signal 0.3, got %v", sig.Price)
	}
}

func TestComposeBroadcastsConstantColumns(t *testing.T) {
	frame := frameWithReturns([]float64{0.01, 0.02, 0.03})
	out, sig, err := Compose(frame, 0.25, Weights{Price: 1, Technical: 1, Sentiment: 1})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for i, r := range out {
		if r.SentimentSignal != 0.25 {
			t.Fatalf("row %d: sentiment_signal not broadcast", i)
		}
		if r.CompositeScore != sig.Composite {
			t.Fatalf("row %d: composite_score not broadcast", i)
		}
	}
}

func TestComposeEmptyFrameErrors(t *testing.T) {
	if _, _, err := Compose(nil, 0, Weights{}); err == nil {
		t.Fatalf("expected error for empty frame")
	}
}

func TestComposeZeroCloseGuard(t *testing.T) {
	frame := frameWithReturns([]float64{0.01})
	frame[0].Close = 0
	frame[0].MACD = 1
	frame[0].MACDSignal = 0
	_, sig, err := Compose(frame, 0, Weights{Technical: 1})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if math.IsInf(sig.Technical, 0) || math.IsNaN(sig.Technical) {
		t.Fatalf("technical signal not finite: %v", sig.Technical)
	}
}

func cloneFrame(rows []models.IndicatorRow) []models.IndicatorRow {
	out := make([]models.IndicatorRow, len(rows))
	copy(out, rows)
	return out
}
