package sim

import (
	"errors"
	"fmt"
)

// Side of a market order: +1 buy, -1 sell. The sign doubles as the
// slippage direction.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Sell {
		return "SELL"
	}
	return "BUY"
}

var (
	ErrInvalidPrice = errors.New("sim: reference price must be positive")
	ErrInvalidQty   = errors.New("sim: quantity must be positive")
)

// ExecutionModel converts an intended trade into a realized fill:
//   - slippage in basis points, applied directionally (buys pay a premium,
//     sells receive a discount) to model bid-ask crossing and impact
//   - a fixed commission per trade, independent of notional
//
// It has no state and no randomness; identical inputs always produce
// identical fills, so a run replays byte-for-byte.
type ExecutionModel struct {
	SlippageBps float64
	Commission  float64
}

// ApplySlippage adjusts price by the model's bps in the direction of side.
func (m ExecutionModel) ApplySlippage(price float64, side Side) (float64, error) {
	if price <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	slip := m.SlippageBps / 10000.0
	return price * (1.0 + slip*float64(side)), nil
}

// Fill prices a market order of qty shares against referencePrice and
// returns the fill price plus the commission charged.
func (m ExecutionModel) Fill(referencePrice float64, side Side, qty int64) (fillPrice, commission float64, err error) {
	if qty <= 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidQty, qty)
	}
	fillPrice, err = m.ApplySlippage(referencePrice, side)
	if err != nil {
		return 0, 0, err
	}
	return fillPrice, m.Commission, nil
}
