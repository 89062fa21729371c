package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/risk"
)

// Trade is one executed order. Append-only; Qty and Price are always
// positive and Notional is their exact product.
type Trade struct {
	ID         string
	Time       time.Time
	Side       Side
	Qty        int64
	Price      float64
	Notional   float64
	Commission float64
}

// EquitySnapshot is one mark-to-market observation, appended exactly once
// per bar in bar order.
type EquitySnapshot struct {
	Time        time.Time
	Cash        float64
	PositionQty int64
	Close       float64
	Equity      float64
	Drawdown    float64
	KillSwitch  bool
}

// Portfolio is the single-owner ledger: cash, position, risk state, and
// the two append-only histories. Nothing else mutates this state. It is
// not safe for concurrent use; parallel runs each get their own instance.
type Portfolio struct {
	initialCash float64
	cash        float64
	positionQty int64
	limits      risk.Limits

	peakEquity float64
	killSwitch bool

	trades     []Trade
	curve      []EquitySnapshot
	nextTrade  int
}

func NewPortfolio(initialCash float64, limits risk.Limits) (*Portfolio, error) {
	if initialCash <= 0 {
		return nil, fmt.Errorf("sim: initial cash must be positive, got %v", initialCash)
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return &Portfolio{
		initialCash: initialCash,
		cash:        initialCash,
		limits:      limits,
		peakEquity:  initialCash,
	}, nil
}

func (p *Portfolio) Cash() float64        { return p.cash }
func (p *Portfolio) PositionQty() int64   { return p.positionQty }
func (p *Portfolio) InitialCash() float64 { return p.initialCash }
func (p *Portfolio) Limits() risk.Limits  { return p.limits }
func (p *Portfolio) KillSwitch() bool     { return p.killSwitch }

// Trades returns the append-only trade log. A run with zero trades
// returns an empty, valid log.
func (p *Portfolio) Trades() []Trade { return p.trades }

// EquityCurve returns one snapshot per bar processed, in bar order.
func (p *Portfolio) EquityCurve() []EquitySnapshot { return p.curve }

// MarkToMarket values the portfolio at the bar's close, updates the
// running peak, and trips the kill switch when drawdown reaches the
// limit. The switch is sticky: once true it never resets, and no further
// position changes occur for the rest of the run.
//
// Called exactly once per bar, before any order for that bar executes.
// No trade is placed here.
func (p *Portfolio) MarkToMarket(date time.Time, closePrice float64) EquitySnapshot {
	equity := p.cash + float64(p.positionQty)*closePrice
	if equity > p.peakEquity {
		p.peakEquity = equity
	}

	dd := 0.0
	if p.peakEquity != 0 {
		dd = (p.peakEquity - equity) / p.peakEquity
	}
	if dd >= p.limits.MaxDrawdown {
		p.killSwitch = true
	}

	snap := EquitySnapshot{
		Time:        date,
		Cash:        p.cash,
		PositionQty: p.positionQty,
		Close:       closePrice,
		Equity:      equity,
		Drawdown:    dd,
		KillSwitch:  p.killSwitch,
	}
	p.curve = append(p.curve, snap)
	return snap
}

// RebalanceToTarget moves the position toward a long-only target (0 or 1)
// and returns the executed trade, or nil when nothing traded.
//
// Sizing uses openPrice (the price known before slippage), via the same
// risk.DesiredQty the engine uses to pick the trade side; execution uses
// fillPrice. A buy that cannot be fully funded is clamped to the largest
// affordable whole-share quantity, or skipped when even one share is
// unaffordable — cash never goes negative. Sells are never cash
// constrained but still pay the commission.
func (p *Portfolio) RebalanceToTarget(date time.Time, target int, openPrice, fillPrice, commission float64) (*Trade, error) {
	if p.killSwitch {
		return nil, nil
	}
	if target != 0 && target != 1 {
		return nil, fmt.Errorf("sim: target position must be 0 or 1 for long-only, got %d", target)
	}
	if openPrice <= 0 || fillPrice <= 0 {
		return nil, fmt.Errorf("%w: open=%v fill=%v", ErrInvalidPrice, openPrice, fillPrice)
	}

	desired := p.limits.DesiredQty(target, p.cash, p.positionQty, openPrice)
	delta := desired - p.positionQty
	if delta == 0 {
		return nil, nil
	}

	side := Buy
	qty := delta
	if delta < 0 {
		side = Sell
		qty = -delta
	}
	notional := float64(qty) * fillPrice

	if side == Buy {
		if notional+commission > p.cash {
			// Clamp to the affordable quantity.
			qty = risk.AffordableQty(p.cash, commission, fillPrice)
			if qty <= 0 {
				return nil, nil
			}
			notional = float64(qty) * fillPrice
		}
		p.cash -= notional + commission
		p.positionQty += qty
	} else {
		p.cash += notional - commission
		p.positionQty -= qty
	}

	p.nextTrade++
	t := Trade{
		ID:         fmt.Sprintf("T-%06d", p.nextTrade),
		Time:       date,
		Side:       side,
		Qty:        qty,
		Price:      fillPrice,
		Notional:   notional,
		Commission: commission,
	}
	p.trades = append(p.trades, t)
	return &t, nil
}
