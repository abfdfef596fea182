package backtest

import (
	"math"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
)

const epsDenom = 1e-9

// annualization factor applied to the sharpe-like ratio regardless of the
// actual bar interval.
const annualizationPeriods = 252

// Params configure one simulation. InitialCash must be positive and FeeBps
// non-negative; both are validated at config load.
type Params struct {
	LongThreshold  float64
	ShortThreshold float64
	InitialCash    float64
	FeeBps         float64
}

type position int

const (
	flat position = iota
	long
)

// Run replays a composite-annotated frame through a two-state long/flat
// machine. Entries fire on composite_score strictly above LongThreshold,
// exits on strictly below ShortThreshold; equality never transitions. A
// position still open at input exhaustion is marked to market, never force
// closed.
//
// Because the composite score is broadcast as a constant column per analysis
// window, a threshold crossed once stays crossed for the whole run: in
// practice at most one position opens and the exit rule does not fire within
// a single window.
func Run(frame []models.IndicatorRow, p Params) models.BacktestMetrics {
	cash := p.InitialCash
	state := flat
	entryPrice := 0.0
	trades := 0
	wins := 0
	curve := make([]float64, 0, len(frame))

	for _, row := range frame {
		score := row.CompositeScore
		price := row.Close

		switch {
		case state == flat && score > p.LongThreshold:
			state = long
			entryPrice = price
			cash -= cash * p.FeeBps / 10000
			trades++
		case state == long && score < p.ShortThreshold:
			ret := (price - entryPrice) / entryPrice
			if ret > 0 {
				wins++
			}
			cash *= 1 + ret
			cash -= cash * p.FeeBps / 10000
			state = flat
		}

		if state == flat {
			curve = append(curve, cash)
		} else {
			curve = append(curve, cash*(price/math.Max(entryPrice, epsDenom)))
		}
	}

	mean, std := equityChangeStats(curve)
	return models.BacktestMetrics{
		WinRate:     float64(wins) / math.Max(float64(trades), 1),
		MaxDrawdown: maxDrawdown(curve),
		SharpeLike:  mean / (std + epsDenom) * math.Sqrt(annualizationPeriods),
		AvgReturn:   mean,
		TradeCount:  trades,
		EquityCurve: curve,
	}
}

// equityChangeStats returns the mean and sample standard deviation of the
// per-bar equity percentage changes. Fewer than two equity points yield
// (0, 0).
func equityChangeStats(curve []float64) (mean, std float64) {
	if len(curve) < 2 {
		return 0, 0
	}
	rets := make([]float64, 0, len(curve)-1)
	var sum float64
	for i := 1; i < len(curve); i++ {
		var r float64
		if curve[i-1] != 0 {
			r = (curve[i] - curve[i-1]) / curve[i-1]
		}
		rets = append(rets, r)
		sum += r
	}
	mean = sum / float64(len(rets))
	if len(rets) < 2 {
		return mean, 0
	}
	var sq float64
	for _, r := range rets {
		d := r - mean
		sq += d * d
	}
	std = math.Sqrt(sq / float64(len(rets)-1))
	return mean, std
}

// maxDrawdown is the largest fractional drop from the running equity peak,
// 0 for an empty curve.
func maxDrawdown(curve []float64) float64 {
	var peak, maxDD float64
	for i, eq := range curve {
		if i == 0 || eq > peak {
			peak = eq
		}
		dd := (peak - eq) / math.Max(peak, epsDenom)
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
