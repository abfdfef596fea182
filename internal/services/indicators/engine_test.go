package indicators

import (
	"math"
	"testing"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
)

func testParams() Params {
	return Params{
		RSIPeriod:          14,
		EMAFast:            12,
		EMASlow:            26,
		MACDSignalPeriod:   9,
		ATRPeriod:          14,
		VolatilityWindow:   5,
		VolumeChangeWindow: 2,
	}
}

func candlesFromCloses(closes []float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			OpenTime:  int64(i) * 3600,
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    100,
			CloseTime: int64(i+1)*3600 - 1,
		}
	}
	return out
}

func TestComputeRSIWarmup(t *testing.T) {
	closes := []float64{1, 2, 3, 2, 4, 5, 5, 6, 7, 8, 9, 8, 9, 10, 11}
	rows := Compute(candlesFromCloses(closes), testParams())
	if len(rows) != len(closes) {
		t.Fatalf("expected %d rows, got %d", len(closes), len(rows))
	}
	for i := 0; i < 14; i++ {
		if rows[i].RSI != 0 {
			t.Fatalf("row %d: expected rsi 0 inside warmup, got %v", i, rows[i].RSI)
		}
	}
	if rows[14].RSI < 0 || rows[14].RSI > 100 {
		t.Fatalf("row 14: rsi out of range: %v", rows[14].RSI)
	}
	if rows[14].RSI == 0 {
		t.Fatalf("row 14: expected defined rsi")
	}
}

func TestComputeShortInputDegradesToZeros(t *testing.T) {
	closes := []float64{10, 11, 12}
	rows := Compute(candlesFromCloses(closes), testParams())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, r := range rows {
		for name, v := range map[string]float64{
			"rsi": r.RSI, "atr": r.ATR, "volatility": r.Volatility, "volume_change": r.VolumeChange,
		} {
			if v != 0 {
				t.Fatalf("row %d: expected %s == 0 for short input, got %v", i, name, v)
			}
		}
		if math.IsNaN(r.Returns) || math.IsInf(r.Returns, 0) {
			t.Fatalf("row %d: returns not finite", i)
		}
	}
	// EMA is seeded by the first value, so it is defined from row 0.
	if rows[0].EMAFast != 10 {
		t.Fatalf("expected ema seeded at first close, got %v", rows[0].EMAFast)
	}
}

func TestComputeEmptyInput(t *testing.T) {
	rows := Compute(nil, testParams())
	if len(rows) != 0 {
		t.Fatalf("expected empty frame, got %d rows", len(rows))
	}
}

func TestComputeAllValuesFinite(t *testing.T) {
	// Zero closes and volumes exercise every divide-by-zero guard.
	closes := make([]float64, 40)
	candles := candlesFromCloses(closes)
	for i := range candles {
		candles[i].Volume = 0
		candles[i].High = 0
		candles[i].Low = 0
	}
	rows := Compute(candles, testParams())
	for i, r := range rows {
		for _, v := range []float64{r.RSI, r.EMAFast, r.EMASlow, r.MACD, r.MACDSignal, r.ATR, r.Volatility, r.VolumeChange, r.Returns} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("row %d: non-finite feature value %v", i, v)
			}
		}
	}
}

func TestComputeReturnsAndVolumeChange(t *testing.T) {
	closes := []float64{100, 110, 99}
	candles := candlesFromCloses(closes)
	candles[0].Volume = 100
	candles[1].Volume = 150
	candles[2].Volume = 300
	p := testParams()
	rows := Compute(candles, p)

	if got := rows[1].Returns; math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("expected returns 0.1, got %v", got)
	}
	if got := rows[2].Returns; math.Abs(got-(-0.1)) > 1e-12 {
		t.Fatalf("expected returns -0.1, got %v", got)
	}
	// volume_change lags by 2 bars: (300-100)/100.
	if got := rows[2].VolumeChange; math.Abs(got-2.0) > 1e-12 {
		t.Fatalf("expected volume_change 2.0, got %v", got)
	}
	if rows[0].VolumeChange != 0 || rows[1].VolumeChange != 0 {
		t.Fatalf("expected zero volume_change inside the lag window")
	}
}

func TestComputeMACDIsEMADifference(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	rows := Compute(candlesFromCloses(closes), testParams())
	for i, r := range rows {
		if math.Abs(r.MACD-(r.EMAFast-r.EMASlow)) > 1e-12 {
			t.Fatalf("row %d: macd != ema_fast - ema_slow", i)
		}
	}
}
