package feature

import (
	"bytes"
	"encoding/csv"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"featurepipe/pkg/series"
)

func TestWriteCSVColumnContract(t *testing.T) {
	row := Row{
		Bar: series.Bar{
			Ticker: "ABC",
			Date:   time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
			Open:   10.5, High: 12, Low: 10, Close: 11.25, Volume: 1500,
		},
		SMAShort:    11.0,
		SMALong:     math.NaN(),
		MACD:        0.25,
		Signal:      0.2,
		Histogram:   0.05,
		RSI:         61.5,
		CandleColor: 1,
		CandleHigh:  11.25,
		CandleLow:   10.5,
		CandleMid:   10.875,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Row{row}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, Columns, records[0])

	got := records[1]
	require.Equal(t, "ABC", got[0])
	require.Equal(t, "2024-03-08", got[1])
	require.Equal(t, "11.25", got[5])
	// Absent sma_long is an empty cell, not a zero.
	require.Equal(t, "", got[8])
	require.Equal(t, "0.25", got[9])
	require.Equal(t, "1", got[13])
}

func TestWriteCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, Columns, records[0])
}
