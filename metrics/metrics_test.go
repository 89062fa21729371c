package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/backtester/sim"
)

func snap(day int, equity, drawdown float64) sim.EquitySnapshot {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	return sim.EquitySnapshot{Time: t, Equity: equity, Drawdown: drawdown}
}

func TestComputeTotalReturn(t *testing.T) {
	t.Parallel()

	s := Compute([]sim.EquitySnapshot{
		snap(0, 100000, 0),
		snap(1, 101000, 0),
		snap(2, 110000, 0),
	})
	assert.InDelta(t, 0.10, s.TotalReturn, 1e-12)
}

func TestComputeCAGR(t *testing.T) {
	t.Parallel()

	// Exactly one 365.25-day year at +21%: CAGR equals the total return.
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := []sim.EquitySnapshot{
		{Time: start, Equity: 100000},
		{Time: start.Add(time.Duration(365.25 * 24 * float64(time.Hour))), Equity: 121000},
	}
	s := Compute(curve)
	assert.InDelta(t, 0.21, s.CAGR, 1e-9)

	// Two years at +21% compounds to 10% per year.
	curve[1].Time = start.Add(time.Duration(2 * 365.25 * 24 * float64(time.Hour)))
	s = Compute(curve)
	assert.InDelta(t, 0.1, s.CAGR, 1e-9)
}

func TestComputeVolAndSharpe(t *testing.T) {
	t.Parallel()

	// Daily returns: +1%, -1%, +1%.
	s := Compute([]sim.EquitySnapshot{
		snap(0, 100, 0),
		snap(1, 101, 0),
		snap(2, 99.99, 0),
		snap(3, 100.9899, 0),
	})

	rets := []float64{0.01, -0.01, 0.01}
	mean := (rets[0] + rets[1] + rets[2]) / 3
	var ss float64
	for _, r := range rets {
		d := r - mean
		ss += d * d
	}
	std := math.Sqrt(ss / 2)

	assert.InDelta(t, std*math.Sqrt(252), s.Vol, 1e-9)
	assert.InDelta(t, mean/std*math.Sqrt(252), s.Sharpe, 1e-9)
}

func TestComputeMaxDrawdown(t *testing.T) {
	t.Parallel()

	s := Compute([]sim.EquitySnapshot{
		snap(0, 100, 0),
		snap(1, 90, 0.10),
		snap(2, 85, 0.15),
		snap(3, 95, 0.05),
	})
	assert.InDelta(t, 0.15, s.MaxDrawdown, 1e-12)
}

func TestComputeShortCurves(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Summary{}, Compute(nil))
	assert.Equal(t, Summary{}, Compute([]sim.EquitySnapshot{snap(0, 100, 0)}))
}

func TestComputeFlatCurve(t *testing.T) {
	t.Parallel()

	s := Compute([]sim.EquitySnapshot{
		snap(0, 100, 0),
		snap(1, 100, 0),
		snap(2, 100, 0),
	})
	assert.Zero(t, s.TotalReturn)
	assert.Zero(t, s.Vol)
	assert.Zero(t, s.Sharpe) // zero std never divides
}
