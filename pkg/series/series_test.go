package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func bar(ticker string, date string, close float64) Bar {
	d, _ := time.Parse("2006-01-02", date)
	return Bar{Ticker: ticker, Date: d, Close: close}
}

func TestAssembleGroupsAndSorts(t *testing.T) {
	bars := []Bar{
		bar("XYZ", "2024-01-03", 3),
		bar("ABC", "2024-01-02", 2),
		bar("ABC", "2024-01-01", 1),
		bar("XYZ", "2024-01-01", 1),
		bar("ABC", "2024-01-03", 3),
	}
	m, err := Assemble(bars)
	require.NoError(t, err)
	require.Len(t, m, 2)

	abc := m["ABC"]
	require.Len(t, abc.Bars, 3)
	for i := 1; i < len(abc.Bars); i++ {
		require.True(t, abc.Bars[i-1].Date.Before(abc.Bars[i].Date))
	}
	require.Equal(t, []float64{1, 2, 3}, abc.Closes())

	require.Equal(t, []string{"ABC", "XYZ"}, Tickers(m))
}

func TestAssembleRejectsDuplicates(t *testing.T) {
	bars := []Bar{
		bar("ABC", "2024-01-01", 1),
		bar("ABC", "2024-01-02", 2),
		bar("ABC", "2024-01-02", 2.5),
	}
	_, err := Assemble(bars)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate bar for ABC on 2024-01-02")
}

func TestAssembleToleratesGaps(t *testing.T) {
	bars := []Bar{
		bar("ABC", "2024-01-01", 1),
		bar("ABC", "2024-01-05", 2),
	}
	m, err := Assemble(bars)
	require.NoError(t, err)
	require.Len(t, m["ABC"].Bars, 2)
}

func TestAssembleEmpty(t *testing.T) {
	m, err := Assemble(nil)
	require.NoError(t, err)
	require.Empty(t, m)
}
