package market

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// BarSet is an ordered run of daily bars for a single instrument.
//
// A validated BarSet guarantees strictly increasing dates and positive,
// finite OHLC on every bar. All pricing decisions downstream assume this.
type BarSet struct {
	Symbol string
	Bars   []Bar

	// Ingest counters, useful when loading scraped CSVs.
	duplicates int
	badRows    int
}

// NewBarSet wraps bars for symbol, sorts them by date, drops rows with
// non-positive or non-finite prices, and keeps the first of any duplicate
// date (same policy as duplicate timestamps in tick feeds: keep-first).
func NewBarSet(symbol string, bars []Bar) *BarSet {
	bs := &BarSet{Symbol: symbol}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	var prev time.Time
	for _, b := range bars {
		if !priceOK(b.Open) || !priceOK(b.High) || !priceOK(b.Low) || !priceOK(b.Close) {
			bs.badRows++
			continue
		}
		if !prev.IsZero() && !b.Time.After(prev) {
			bs.duplicates++
			continue
		}
		if b.Volume < 0 || math.IsNaN(b.Volume) {
			b.Volume = 0
		}
		prev = b.Time
		bs.Bars = append(bs.Bars, b)
	}

	return bs
}

func priceOK(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

// Validate checks the invariants a simulation requires. A BarSet built by
// NewBarSet or LoadCSV always passes; hand-assembled sets may not.
func (bs *BarSet) Validate() error {
	if len(bs.Bars) == 0 {
		return fmt.Errorf("barset %s: no bars", bs.Symbol)
	}

	var prev time.Time
	for i, b := range bs.Bars {
		if !priceOK(b.Open) || !priceOK(b.High) || !priceOK(b.Low) || !priceOK(b.Close) {
			return fmt.Errorf("barset %s: bar %d (%s): non-positive price",
				bs.Symbol, i, b.Time.Format("2006-01-02"))
		}
		if !prev.IsZero() && !b.Time.After(prev) {
			return fmt.Errorf("barset %s: bar %d (%s): dates not strictly increasing",
				bs.Symbol, i, b.Time.Format("2006-01-02"))
		}
		prev = b.Time
	}
	return nil
}

// Len returns the number of bars.
func (bs *BarSet) Len() int { return len(bs.Bars) }

// Closes returns the close price of every bar, in bar order.
func (bs *BarSet) Closes() []float64 {
	out := make([]float64, len(bs.Bars))
	for i, b := range bs.Bars {
		out[i] = b.Close
	}
	return out
}

// Slice returns a BarSet restricted to bars in [start, end]. A zero start
// or end leaves that side unbounded.
func (bs *BarSet) Slice(start, end time.Time) *BarSet {
	out := &BarSet{Symbol: bs.Symbol}
	for _, b := range bs.Bars {
		if !start.IsZero() && b.Time.Before(start) {
			continue
		}
		if !end.IsZero() && b.Time.After(end) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out
}

// Duplicates reports rows dropped during ingest for repeating a date.
func (bs *BarSet) Duplicates() int { return bs.duplicates }

// BadRows reports rows dropped during ingest for malformed prices.
func (bs *BarSet) BadRows() int { return bs.badRows }
