// Package journal persists the flat artifacts a backtest produces: the
// trade log and the equity curve, one row per executed trade and one row
// per bar.
package journal

import "time"

// TradeRecord is one executed order. Qty and Price are always positive;
// Notional is their exact product.
type TradeRecord struct {
	TradeID    string
	RunID      string
	Time       time.Time
	Side       string // "BUY" or "SELL"
	Qty        int64
	Price      float64
	Notional   float64
	Commission float64
}

// EquityRecord is one mark-to-market snapshot, one per bar in bar order.
type EquityRecord struct {
	RunID       string
	Time        time.Time
	Cash        float64
	PositionQty int64
	Close       float64
	Equity      float64
	Drawdown    float64
	KillSwitch  bool
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// Nop discards everything. Handy for tests and dry runs.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error   { return nil }
func (Nop) RecordEquity(EquityRecord) error { return nil }
func (Nop) Close() error                    { return nil }
