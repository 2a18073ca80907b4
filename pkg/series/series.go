// Package series assembles parsed daily bars into ordered per-ticker series.
package series

import (
	"fmt"
	"sort"
	"time"
)

// Bar is one daily OHLCV observation for a single ticker. The Date is the
// trade date stamped from the source object's key, not from row content.
// Bars are immutable once parsed.
type Bar struct {
	Ticker   string
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	SourceTS int64 // window-start timestamp carried from the row, informational only
}

// Series is the ordered bar history of one ticker, strictly increasing by
// date. Gaps in the date sequence are tolerated; duplicates are not.
type Series struct {
	Ticker string
	Bars   []Bar
}

// Assemble groups bars by ticker and sorts each group by date. A duplicate
// (ticker, date) pair is an error: it signals that the catalog or fetch step
// produced overlapping objects, which must not be papered over.
func Assemble(bars []Bar) (map[string]*Series, error) {
	byTicker := make(map[string]*Series)
	for _, b := range bars {
		s, ok := byTicker[b.Ticker]
		if !ok {
			s = &Series{Ticker: b.Ticker}
			byTicker[b.Ticker] = s
		}
		s.Bars = append(s.Bars, b)
	}

	for _, s := range byTicker {
		sort.Slice(s.Bars, func(i, j int) bool {
			return s.Bars[i].Date.Before(s.Bars[j].Date)
		})
		for i := 1; i < len(s.Bars); i++ {
			if s.Bars[i].Date.Equal(s.Bars[i-1].Date) {
				return nil, fmt.Errorf("series: duplicate bar for %s on %s",
					s.Ticker, s.Bars[i].Date.Format("2006-01-02"))
			}
		}
	}
	return byTicker, nil
}

// Tickers returns the assembled ticker set in sorted order, so callers that
// iterate the map can do so deterministically.
func Tickers(m map[string]*Series) []string {
	out := make([]string, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Closes extracts the close column of a series, oldest first.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}
