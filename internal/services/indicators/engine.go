package indicators

import (
	"math"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
)

const epsDenom = 1e-9

// Params is the indicator period set. All periods are positive integers,
// validated at config load.
type Params struct {
	RSIPeriod          int
	EMAFast            int
	EMASlow            int
	MACDSignalPeriod   int
	ATRPeriod          int
	VolatilityWindow   int
	VolumeChangeWindow int
}

// Compute turns an ordered candle sequence into one IndicatorRow per candle.
// Every lookback gap, zero denominator, or otherwise undefined value is
// filled with 0; short input degrades to zeros instead of returning an error.
func Compute(candles []models.Candle, p Params) []models.IndicatorRow {
	n := len(candles)
	rows := make([]models.IndicatorRow, n)
	if n == 0 {
		return rows
	}

	closes := make([]float64, n)
	for i, c := range candles {
		rows[i].Candle = c
		closes[i] = c.Close
	}

	returns := pctChange(closes)
	rsi := relativeStrength(closes, p.RSIPeriod)

	emaFast := ema(closes, p.EMAFast)
	emaSlow := ema(closes, p.EMASlow)
	macd := make([]float64, n)
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	macdSignal := ema(macd, p.MACDSignalPeriod)

	atr := averageTrueRange(candles, p.ATRPeriod)
	vol := rollingStd(returns, p.VolatilityWindow)

	for i := range rows {
		rows[i].Returns = returns[i]
		rows[i].RSI = rsi[i]
		rows[i].EMAFast = emaFast[i]
		rows[i].EMASlow = emaSlow[i]
		rows[i].MACD = macd[i]
		rows[i].MACDSignal = macdSignal[i]
		rows[i].ATR = atr[i]
		rows[i].Volatility = vol[i]
		rows[i].VolumeChange = lagChange(candles, p.VolumeChangeWindow, i)
	}
	return rows
}

// pctChange returns (x[i]-x[i-1])/x[i-1] with 0 at index 0 and for zero
// denominators.
func pctChange(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i := 1; i < len(xs); i++ {
		if xs[i-1] == 0 {
			continue
		}
		out[i] = (xs[i] - xs[i-1]) / xs[i-1]
	}
	return out
}

// relativeStrength computes RSI from rolling means of gains and losses over
// period bars. The first defined row is index period; earlier rows are 0
// because the delta at index 0 does not exist.
func relativeStrength(closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	if period <= 0 || n < period+1 {
		return out
	}
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	for i := period; i < n; i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			gain += gains[j]
			loss += losses[j]
		}
		gain /= float64(period)
		loss /= float64(period)
		if loss == 0 {
			loss = epsDenom
		}
		rs := gain / loss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// ema is the unadjusted recursive EMA with factor 2/(span+1), seeded by the
// first observed value.
func ema(xs []float64, span int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 || span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// averageTrueRange is a simple rolling mean of the true range, no Wilder
// smoothing. The true range at index 0 falls back to high-low because there
// is no previous close.
func averageTrueRange(candles []models.Candle, period int) []float64 {
	n := len(candles)
	out := make([]float64, n)
	if period <= 0 || n < period {
		return out
	}
	tr := make([]float64, n)
	tr[0] = candles[0].High - candles[0].Low
	for i := 1; i < n; i++ {
		hl := candles[i].High - candles[i].Low
		hc := math.Abs(candles[i].High - candles[i-1].Close)
		lc := math.Abs(candles[i].Low - candles[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	for i := period - 1; i < n; i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += tr[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// rollingStd is the sample standard deviation of returns over window bars.
// The return at index 0 is undefined, so the first defined row is index
// window, mirroring a rolling window over a differenced series.
func rollingStd(returns []float64, window int) []float64 {
	n := len(returns)
	out := make([]float64, n)
	if window <= 1 || n < window+1 {
		return out
	}
	for i := window; i < n; i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += returns[j]
		}
		mean := sum / float64(window)
		var sq float64
		for j := i - window + 1; j <= i; j++ {
			d := returns[j] - mean
			sq += d * d
		}
		v := sq / float64(window-1)
		if v < 0 {
			v = 0
		}
		out[i] = math.Sqrt(v)
	}
	return out
}

// lagChange is the volume percentage change lagged by window bars, 0 inside
// the lookback gap or for a zero denominator.
func lagChange(candles []models.Candle, window int, i int) float64 {
	if window <= 0 || i < window {
		return 0
	}
	prev := candles[i-window].Volume
	if prev == 0 {
		return 0
	}
	return (candles[i].Volume - prev) / prev
}
