package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/risk"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewPortfolioInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := NewPortfolio(0, risk.DefaultLimits())
	assert.Error(t, err)

	_, err = NewPortfolio(-100, risk.DefaultLimits())
	assert.Error(t, err)

	_, err = NewPortfolio(1000, risk.Limits{MaxPositionPct: 0, MaxDrawdown: 0.2})
	assert.Error(t, err)

	_, err = NewPortfolio(1000, risk.Limits{MaxPositionPct: 0.25, MaxDrawdown: 1.5})
	assert.Error(t, err)
}

func TestRebalanceSizingScenario(t *testing.T) {
	t.Parallel()

	// initial_cash=100000, max_position_pct=0.25, open=50
	// => desired 500 shares; fill at 50 with commission 1
	// => cash 100000 - 25000 - 1 = 74999
	p, err := NewPortfolio(100_000, risk.Limits{MaxPositionPct: 0.25, MaxDrawdown: 0.20})
	require.NoError(t, err)

	tr, err := p.RebalanceToTarget(day(0), 1, 50, 50, 1)
	require.NoError(t, err)
	require.NotNil(t, tr)

	assert.Equal(t, Buy, tr.Side)
	assert.Equal(t, int64(500), tr.Qty)
	assert.Equal(t, 50.0, tr.Price)
	assert.Equal(t, 25_000.0, tr.Notional)
	assert.Equal(t, 1.0, tr.Commission)

	assert.Equal(t, 74_999.0, p.Cash())
	assert.Equal(t, int64(500), p.PositionQty())
}

func TestRebalanceIdempotentNoop(t *testing.T) {
	t.Parallel()

	p, err := NewPortfolio(100_000, risk.Limits{MaxPositionPct: 0.25, MaxDrawdown: 0.20})
	require.NoError(t, err)

	tr, err := p.RebalanceToTarget(day(0), 1, 50, 50, 0)
	require.NoError(t, err)
	require.NotNil(t, tr)

	cash := p.Cash()
	qty := p.PositionQty()

	// Same target, same open price: desired equals current position.
	tr, err = p.RebalanceToTarget(day(1), 1, 50, 50.5, 1)
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.Equal(t, cash, p.Cash())
	assert.Equal(t, qty, p.PositionQty())
	assert.Len(t, p.Trades(), 1)
}

func TestRebalanceAffordabilityClamp(t *testing.T) {
	t.Parallel()

	// cash=100, commission=1, fill=30, desired 5 shares (needs 151)
	// => clamps to floor(99/30)=3, cash = 100 - 90 - 1 = 9
	p, err := NewPortfolio(100, risk.Limits{MaxPositionPct: 1.0, MaxDrawdown: 0.20})
	require.NoError(t, err)

	// open=20 sizes desired to floor(100/20)=5; fill costs more.
	tr, err := p.RebalanceToTarget(day(0), 1, 20, 30, 1)
	require.NoError(t, err)
	require.NotNil(t, tr)

	assert.Equal(t, int64(3), tr.Qty)
	assert.Equal(t, 90.0, tr.Notional)
	assert.Equal(t, 9.0, p.Cash())
	assert.Equal(t, int64(3), p.PositionQty())
	assert.GreaterOrEqual(t, p.Cash(), 0.0)
}

func TestRebalanceAbortsUnaffordableBuy(t *testing.T) {
	t.Parallel()

	// Even one share is unaffordable: skip, do not trade.
	p, err := NewPortfolio(10, risk.Limits{MaxPositionPct: 1.0, MaxDrawdown: 0.20})
	require.NoError(t, err)

	tr, err := p.RebalanceToTarget(day(0), 1, 2, 50, 1)
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.Equal(t, 10.0, p.Cash())
	assert.Equal(t, int64(0), p.PositionQty())
	assert.Empty(t, p.Trades())
}

func TestRebalanceSellCreditsCommission(t *testing.T) {
	t.Parallel()

	p, err := NewPortfolio(100_000, risk.Limits{MaxPositionPct: 0.25, MaxDrawdown: 0.20})
	require.NoError(t, err)

	tr, err := p.RebalanceToTarget(day(0), 1, 50, 50, 1)
	require.NoError(t, err)
	require.Equal(t, int64(500), tr.Qty)

	// Flatten: sell all 500 at 49, commission still charged.
	tr, err = p.RebalanceToTarget(day(1), 0, 49, 49, 1)
	require.NoError(t, err)
	require.NotNil(t, tr)

	assert.Equal(t, Sell, tr.Side)
	assert.Equal(t, int64(500), tr.Qty)
	assert.Equal(t, int64(0), p.PositionQty())
	// 74999 + 500*49 - 1 = 99498
	assert.Equal(t, 99_498.0, p.Cash())
}

func TestRebalanceInvalidTarget(t *testing.T) {
	t.Parallel()

	p, err := NewPortfolio(1000, risk.DefaultLimits())
	require.NoError(t, err)

	_, err = p.RebalanceToTarget(day(0), 2, 50, 50, 1)
	assert.Error(t, err)

	_, err = p.RebalanceToTarget(day(0), -1, 50, 50, 1)
	assert.Error(t, err)
}

func TestMarkToMarketKillSwitch(t *testing.T) {
	t.Parallel()

	p, err := NewPortfolio(100_000, risk.Limits{MaxPositionPct: 1.0, MaxDrawdown: 0.20})
	require.NoError(t, err)

	// Full position: 1000 shares at 100, no costs.
	_, err = p.RebalanceToTarget(day(0), 1, 100, 100, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1000), p.PositionQty())

	s := p.MarkToMarket(day(0), 100)
	assert.Equal(t, 100_000.0, s.Equity)
	assert.False(t, s.KillSwitch)

	// Equity drops from peak 100000 to exactly 80000: dd = 0.20 trips
	// the switch at the boundary.
	s = p.MarkToMarket(day(1), 80)
	assert.Equal(t, 80_000.0, s.Equity)
	assert.InDelta(t, 0.20, s.Drawdown, 1e-12)
	assert.True(t, s.KillSwitch)

	// Recovery does not reset it.
	s = p.MarkToMarket(day(2), 130)
	assert.True(t, s.KillSwitch)
	assert.True(t, p.KillSwitch())

	// And no further position changes occur.
	tr, err := p.RebalanceToTarget(day(3), 0, 130, 130, 1)
	assert.NoError(t, err)
	assert.Nil(t, tr)
	assert.Equal(t, int64(1000), p.PositionQty())
}

func TestMarkToMarketCurveOrder(t *testing.T) {
	t.Parallel()

	p, err := NewPortfolio(1000, risk.DefaultLimits())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		p.MarkToMarket(day(i), 10+float64(i))
	}

	curve := p.EquityCurve()
	require.Len(t, curve, 5)
	for i := 1; i < len(curve); i++ {
		assert.True(t, curve[i].Time.After(curve[i-1].Time))
		assert.GreaterOrEqual(t, curve[i].PositionQty, int64(0))
	}
}
