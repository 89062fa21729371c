package market

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Stooq daily CSV layout: Date,Open,High,Low,Close,Volume
// with Date formatted as 2006-01-02. Volume may be missing.

const dateLayout = "2006-01-02"

// LoadCSV reads a stooq-style daily OHLCV CSV into a BarSet. Files ending
// in .gz or .xz are decompressed transparently (cached datasets are often
// stored compressed). Rows with unparseable dates or non-positive prices
// are dropped and counted, matching the upstream loader's behavior.
func LoadCSV(path, symbol string) (*BarSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("load bars %s: gzip: %w", path, err)
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("load bars %s: xz: %w", path, err)
		}
		r = xr
	}

	return ReadCSV(r, symbol)
}

// ReadCSV parses stooq daily CSV rows from r.
func ReadCSV(r io.Reader, symbol string) (*BarSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read bars: header: %w", err)
	}
	col, err := mapColumns(header)
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}

	var bars []Bar
	bad := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars: %w", err)
		}

		b, ok := parseRow(rec, col)
		if !ok {
			bad++
			continue
		}
		bars = append(bars, b)
	}

	bs := NewBarSet(symbol, bars)
	bs.badRows += bad
	if len(bs.Bars) == 0 {
		return nil, fmt.Errorf("read bars: no valid rows for %s", symbol)
	}
	return bs, nil
}

type columns struct {
	date, open, high, low, close, volume int
}

func mapColumns(header []string) (columns, error) {
	col := columns{date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			col.date = i
		case "open":
			col.open = i
		case "high":
			col.high = i
		case "low":
			col.low = i
		case "close":
			col.close = i
		case "volume":
			col.volume = i
		}
	}
	if col.date < 0 || col.open < 0 || col.high < 0 || col.low < 0 || col.close < 0 {
		return col, fmt.Errorf("missing required columns in header %v", header)
	}
	return col, nil
}

func parseRow(rec []string, col columns) (Bar, bool) {
	if len(rec) <= col.close {
		return Bar{}, false
	}

	ts, err := time.Parse(dateLayout, strings.TrimSpace(rec[col.date]))
	if err != nil {
		return Bar{}, false
	}

	o, err1 := strconv.ParseFloat(rec[col.open], 64)
	h, err2 := strconv.ParseFloat(rec[col.high], 64)
	l, err3 := strconv.ParseFloat(rec[col.low], 64)
	c, err4 := strconv.ParseFloat(rec[col.close], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return Bar{}, false
	}

	// Volume defaults to 0 when the column is absent or unparseable.
	v := 0.0
	if col.volume >= 0 && col.volume < len(rec) {
		if pv, err := strconv.ParseFloat(rec[col.volume], 64); err == nil {
			v = pv
		}
	}

	return Bar{Time: ts.UTC(), Open: o, High: h, Low: l, Close: c, Volume: v}, true
}
