// Package indicators provides deterministic technical indicators over
// daily close prices. The same code serves streaming use and whole-series
// precomputation in backtests.
package indicators

// Indicator computes a single streaming value from a price series.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next close price.
	Update(close float64)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value. Callers should always
	// check Ready() first.
	Value() float64
}
