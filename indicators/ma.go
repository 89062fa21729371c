package indicators

import (
	"fmt"
	"math"
)

// SimpleMA is a streaming Simple Moving Average over close prices.
type SimpleMA struct {
	period int
	window []float64
}

// NewSMA creates a Simple Moving Average indicator with the given period.
func NewSMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
}

func (m *SimpleMA) Update(close float64) {
	m.window = append(m.window, close)
	// Keep only the last 'period' closes
	if len(m.window) > m.period {
		m.window = m.window[1:]
	}
}

func (m *SimpleMA) Ready() bool {
	return len(m.window) >= m.period
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}

	sum := 0.0
	for _, c := range m.window {
		sum += c
	}
	return sum / float64(len(m.window))
}

// SMASeries computes the trailing simple moving average of values at every
// index. Entries before the warm-up completes (fewer than period values
// seen) are NaN. The value at index i uses values[i-period+1..i] only, so
// the series is free of lookahead.
func SMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("sma: period must be positive, got %d", period)
	}

	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}
