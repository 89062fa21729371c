// Package risk holds the per-run risk limits and the position-sizing
// arithmetic shared by the portfolio and the simulation engine.
package risk

import "fmt"

// Limits are immutable per run.
type Limits struct {
	// MaxPositionPct caps position value as a fraction of equity, (0, 1].
	MaxPositionPct float64

	// MaxDrawdown is the peak-to-trough fraction that trips the kill
	// switch, (0, 1].
	MaxDrawdown float64
}

// DefaultLimits returns the standard 25% position cap and 20% drawdown stop.
func DefaultLimits() Limits {
	return Limits{MaxPositionPct: 0.25, MaxDrawdown: 0.20}
}

// Validate rejects out-of-range fractions.
func (l Limits) Validate() error {
	if l.MaxPositionPct <= 0 || l.MaxPositionPct > 1 {
		return fmt.Errorf("risk: max_position_pct must be in (0, 1], got %v", l.MaxPositionPct)
	}
	if l.MaxDrawdown <= 0 || l.MaxDrawdown > 1 {
		return fmt.Errorf("risk: max_drawdown must be in (0, 1], got %v", l.MaxDrawdown)
	}
	return nil
}

// MaxQty returns the largest whole-share position worth at most
// MaxPositionPct of equity at the given price.
func (l Limits) MaxQty(equity, price float64) int64 {
	if price <= 0 || equity <= 0 {
		return 0
	}
	return int64(l.MaxPositionPct * equity / price)
}

// DesiredQty sizes a 0/1 target from open-price equity. Sizing deliberately
// uses the open price, known before any slippage adjustment, so sizing and
// fill price never become circularly dependent. Both the engine (to pick
// the trade side) and the portfolio (to execute) call this one function;
// the floor happens in exactly one place.
func (l Limits) DesiredQty(target int, cash float64, positionQty int64, openPrice float64) int64 {
	if target != 1 {
		return 0
	}
	equity := cash + float64(positionQty)*openPrice
	return l.MaxQty(equity, openPrice)
}

// AffordableQty returns the largest whole-share buy fundable from cash
// after the fixed commission. May be zero or negative; callers skip the
// trade in that case.
func AffordableQty(cash, commission, fillPrice float64) int64 {
	if fillPrice <= 0 {
		return 0
	}
	return int64((cash - commission) / fillPrice)
}
