// Package strategies turns a close-price series into a daily target
// position series. Strategies are pure: the target at bar t depends only
// on closes at or before t. The simulation engine, not the strategy,
// enforces the one-bar execution lag.
package strategies

import (
	"fmt"
	"strings"
)

// Target position values produced by a strategy.
const (
	Flat  = 0
	Long  = +1
	Short = -1
)

// Strategy maps a close series to an aligned target-position series.
type Strategy interface {
	Name() string

	// Warmup returns how many bars are consumed before the first defined
	// target. Targets during warm-up are Flat.
	Warmup() int

	// Targets returns one target per close, 1:1 aligned with the input.
	Targets(closes []float64) ([]int, error)
}

// ByName constructs a strategy from its registry name.
func ByName(name string, fast, slow int, longOnly bool) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "flat", "none":
		return FlatStrategy{}, nil

	case "ma-cross", "macross":
		return &MACross{Fast: fast, Slow: slow, LongOnly: longOnly}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: flat, ma-cross)", name)
	}
}
