package indicators

import (
	"errors"
	"fmt"
	"math"

	"featurepipe/pkg/feature"
	"featurepipe/pkg/series"
)

// Config enumerates the window sizes and spans of the indicator chain.
// Flexibility lives here, fixed at startup, rather than in runtime-built
// expressions.
type Config struct {
	ShortWindow int // trailing closes for sma_short
	LongWindow  int // trailing closes for sma_long
	FastSpan    int // fast EMA span feeding MACD
	SlowSpan    int // slow EMA span feeding MACD
	SignalSpan  int // EMA span over the MACD line
	RSIPeriod   int // Wilder smoothing period
}

// DefaultConfig returns the standard 20/50 SMA, 12/26/9 MACD, 14 RSI setup.
func DefaultConfig() Config {
	return Config{
		ShortWindow: 20,
		LongWindow:  50,
		FastSpan:    12,
		SlowSpan:    26,
		SignalSpan:  9,
		RSIPeriod:   14,
	}
}

// Validate rejects non-positive sizes and inverted window pairs before any
// data is fetched.
func (c Config) Validate() error {
	for _, v := range []struct {
		name string
		n    int
	}{
		{"shortWindow", c.ShortWindow},
		{"longWindow", c.LongWindow},
		{"fastSpan", c.FastSpan},
		{"slowSpan", c.SlowSpan},
		{"signalSpan", c.SignalSpan},
		{"rsiPeriod", c.RSIPeriod},
	} {
		if v.n <= 0 {
			return fmt.Errorf("indicators: %s must be positive, got %d", v.name, v.n)
		}
	}
	if c.ShortWindow >= c.LongWindow {
		return errors.New("indicators: shortWindow must be smaller than longWindow")
	}
	if c.FastSpan >= c.SlowSpan {
		return errors.New("indicators: fastSpan must be smaller than slowSpan")
	}
	return nil
}

// Engine applies the indicator chain to one ticker's series at a time.
// Engines hold no per-run state, so one Engine may serve many tickers
// concurrently.
type Engine struct {
	cfg Config
}

// NewEngine validates the configuration and returns an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Run stages the full indicator chain over one series and returns the rows
// whose signal line is present — the deepest dependency, so every emitted
// row carries every stage. Short histories return no rows, which is a valid
// outcome, not an error.
func (e *Engine) Run(s *series.Series) []feature.Row {
	closes := s.Closes()

	smaShort := SMA(closes, e.cfg.ShortWindow)
	smaLong := SMA(closes, e.cfg.LongWindow)
	macd, signal, hist := MACD(closes, e.cfg.FastSpan, e.cfg.SlowSpan, e.cfg.SignalSpan)
	rsi := RSI(closes, e.cfg.RSIPeriod)

	var rows []feature.Row
	for i, b := range s.Bars {
		if math.IsNaN(signal[i]) {
			continue
		}
		rows = append(rows, feature.Row{
			Bar:         b,
			SMAShort:    smaShort[i],
			SMALong:     smaLong[i],
			MACD:        macd[i],
			Signal:      signal[i],
			Histogram:   hist[i],
			RSI:         rsi[i],
			CandleColor: CandleColor(b.Open, b.Close),
			CandleHigh:  math.Max(b.Open, b.Close),
			CandleLow:   math.Min(b.Open, b.Close),
			CandleMid:   (b.Open + b.Close) / 2,
		})
	}
	return rows
}
