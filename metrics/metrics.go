// Package metrics aggregates summary statistics over a recorded equity
// curve. It runs after a simulation, never inside it.
package metrics

import (
	"math"

	"github.com/rustyeddy/backtester/sim"
)

// TradingDays is the annualization factor for daily bars.
const TradingDays = 252

// Summary holds the headline performance numbers for one run.
type Summary struct {
	TotalReturn float64
	CAGR        float64
	Vol         float64
	Sharpe      float64
	MaxDrawdown float64
}

// Compute derives a Summary from the equity curve. Vol and Sharpe use the
// sample standard deviation of daily returns annualized by sqrt(252); CAGR
// uses the calendar span in 365.25-day years. Fewer than two snapshots
// yield a zero Summary.
func Compute(curve []sim.EquitySnapshot) Summary {
	if len(curve) < 2 {
		return Summary{}
	}

	first := curve[0].Equity
	last := curve[len(curve)-1].Equity

	var s Summary
	if first > 0 {
		s.TotalReturn = last/first - 1.0
	}

	years := curve[len(curve)-1].Time.Sub(curve[0].Time).Hours() / 24.0 / 365.25
	if years > 0 && first > 0 && last > 0 {
		s.CAGR = math.Pow(last/first, 1.0/years) - 1.0
	}

	rets := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev != 0 {
			rets = append(rets, curve[i].Equity/prev-1.0)
		}
	}

	mean, std := meanStd(rets)
	if len(rets) > 1 {
		s.Vol = std * math.Sqrt(TradingDays)
	}
	if std > 0 {
		s.Sharpe = mean / std * math.Sqrt(TradingDays)
	}

	for _, snap := range curve {
		if snap.Drawdown > s.MaxDrawdown {
			s.MaxDrawdown = snap.Drawdown
		}
	}
	return s
}

// meanStd returns the mean and sample (ddof=1) standard deviation.
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	if len(xs) < 2 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}
