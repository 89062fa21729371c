package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/backtester/indicators"
)

// MACross targets long when the fast trailing SMA of closes is above the
// slow one. Long-only mode emits 0/1; otherwise +1 above, -1 below, 0 on
// an exact tie. Undefined averages (warm-up) always emit Flat.
//
// Fast and Slow need not satisfy Fast < Slow; the crossover comparison is
// well-defined either way.
type MACross struct {
	Fast     int
	Slow     int
	LongOnly bool
}

func (s *MACross) Name() string {
	return fmt.Sprintf("ma-cross(%d,%d)", s.Fast, s.Slow)
}

func (s *MACross) Warmup() int {
	if s.Fast > s.Slow {
		return s.Fast
	}
	return s.Slow
}

func (s *MACross) Targets(closes []float64) ([]int, error) {
	if s.Fast <= 0 || s.Slow <= 0 {
		return nil, fmt.Errorf("ma-cross: windows must be positive, got fast=%d slow=%d", s.Fast, s.Slow)
	}

	fast, err := indicators.SMASeries(closes, s.Fast)
	if err != nil {
		return nil, err
	}
	slow, err := indicators.SMASeries(closes, s.Slow)
	if err != nil {
		return nil, err
	}

	targets := make([]int, len(closes))
	for i := range closes {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			targets[i] = Flat
			continue
		}

		switch {
		case fast[i] > slow[i]:
			targets[i] = Long
		case !s.LongOnly && fast[i] < slow[i]:
			targets[i] = Short
		default:
			targets[i] = Flat
		}
	}
	return targets, nil
}

// FlatStrategy never takes a position. Useful as a baseline and for
// verifying that a run with no signals produces an empty trade log.
type FlatStrategy struct{}

func (FlatStrategy) Name() string { return "flat" }

func (FlatStrategy) Warmup() int { return 0 }

func (FlatStrategy) Targets(closes []float64) ([]int, error) {
	return make([]int, len(closes)), nil
}
