// Package feature defines the output feature row and its wire encoding.
package feature

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"featurepipe/pkg/series"
)

// Row is a fully staged feature row: the source bar plus candle geometry and
// the indicator chain. Indicator fields use NaN for "not yet warmed up".
type Row struct {
	series.Bar

	SMAShort  float64
	SMALong   float64
	MACD      float64
	Signal    float64
	Histogram float64
	RSI       float64

	CandleColor int // +1 when close > open, -1 otherwise
	CandleHigh  float64
	CandleLow   float64
	CandleMid   float64
}

// Columns is the output column order. Downstream consumers rely on it; do
// not reorder.
var Columns = []string{
	"ticker", "date", "open", "high", "low", "close", "volume",
	"sma_short", "sma_long", "macd", "signal", "histogram", "rsi",
	"candle_color", "candle_high", "candle_low", "candle_mid",
}

// WriteCSV encodes rows in Columns order with a header. Absent indicator
// values (NaN) become empty cells.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Ticker,
			r.Date.Format("2006-01-02"),
			formatFloat(r.Open),
			formatFloat(r.High),
			formatFloat(r.Low),
			formatFloat(r.Close),
			formatFloat(r.Volume),
			formatFloat(r.SMAShort),
			formatFloat(r.SMALong),
			formatFloat(r.MACD),
			formatFloat(r.Signal),
			formatFloat(r.Histogram),
			formatFloat(r.RSI),
			strconv.Itoa(r.CandleColor),
			formatFloat(r.CandleHigh),
			formatFloat(r.CandleLow),
			formatFloat(r.CandleMid),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
