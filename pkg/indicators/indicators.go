// Package indicators derives rolling and exponential technical indicators
// from ordered close series. Absent values (warm-up) are NaN.
package indicators

import "math"

// SMA returns the trailing arithmetic mean over a fixed window. Output is
// NaN until the window is filled; a partially filled window never yields a
// partial average. Uses a ring buffer with a running sum so each step is O(1).
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	buf := make([]float64, window)
	var sum float64
	for i, v := range values {
		if i >= window {
			sum -= buf[i%window]
		}
		buf[i%window] = v
		sum += v
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// emaAcc is the recurrence state of one exponential average: a seen-count
// plus a scalar carry. The first present output is the arithmetic mean of
// the first `span` present inputs; afterwards v = alpha*x + (1-alpha)*v.
type emaAcc struct {
	span  int
	alpha float64
	seen  int
	sum   float64
	value float64
}

func newEMAAcc(span int) *emaAcc {
	return &emaAcc{span: span, alpha: 2.0 / float64(span+1)}
}

// push feeds one observation and returns the current output. NaN inputs do
// not advance the seen-count: before warm-up they yield NaN, after warm-up
// the carry is repeated unchanged.
func (a *emaAcc) push(x float64) float64 {
	if math.IsNaN(x) {
		if a.seen >= a.span {
			return a.value
		}
		return math.NaN()
	}
	a.seen++
	switch {
	case a.seen < a.span:
		a.sum += x
		return math.NaN()
	case a.seen == a.span:
		a.sum += x
		a.value = a.sum / float64(a.span)
	default:
		a.value = a.alpha*x + (1-a.alpha)*a.value
	}
	return a.value
}

// EMA returns the exponentially weighted average with the given span,
// counting only present inputs toward the warm-up seed.
func EMA(values []float64, span int) []float64 {
	out := nanSlice(len(values))
	if span <= 0 {
		return out
	}
	acc := newEMAAcc(span)
	for i, v := range values {
		out[i] = acc.push(v)
	}
	return out
}

// MACD returns the MACD line, its signal line, and the histogram. MACD is
// present only where both underlying EMAs are; the signal warm-up counts
// present MACD observations only.
func MACD(closes []float64, fast, slow, signalSpan int) (macd, signal, hist []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	macd = nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(emaFast[i]) && !math.IsNaN(emaSlow[i]) {
			macd[i] = emaFast[i] - emaSlow[i]
		}
	}

	signal = EMA(macd, signalSpan)

	hist = nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(macd[i]) && !math.IsNaN(signal[i]) {
			hist[i] = macd[i] - signal[i]
		}
	}
	return macd, signal, hist
}

// RSI computes the Relative Strength Index with Wilder smoothing
// (alpha = 1/period), seeded by the simple mean of the first `period`
// gains and losses. The first row of a series has no prior close and is
// absent, not zero. A zero average loss maps to RSI 100 rather than a
// division fault. Output stays within [0, 100].
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		diff := closes[i] - closes[i-1]
		gainSum += math.Max(diff, 0)
		lossSum += math.Max(-diff, 0)
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	out[period] = rsiFrom(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		avgGain = (avgGain*(p-1) + math.Max(diff, 0)) / p
		avgLoss = (avgLoss*(p-1) + math.Max(-diff, 0)) / p
		out[i] = rsiFrom(avgGain, avgLoss)
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// CandleColor is +1 when the close exceeds the open and -1 otherwise.
func CandleColor(open, close float64) int {
	if close > open {
		return 1
	}
	return -1
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
