package strategy

import (
	"time"

	"StockSentinel/internal/model"
)

func makeBars(closes []float64) []model.OHLCV {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1e6,
		}
	}
	return bars
}

func series(n int, closeAt func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = closeAt(i)
	}
	return out
}

// alternating returns n closes switching between base and base+amp, ending on
// base+amp when endHigh is set.
func alternating(n int, base, amp float64, endHigh bool) []float64 {
	out := make([]float64, n)
	for k := range out {
		if ((n-1-k)%2 == 0) == endHigh {
			out[k] = base + amp
		} else {
			out[k] = base
		}
	}
	return out
}

func ramp(start, step float64, n int) []float64 {
	return series(n, func(i int) float64 { return start + step*float64(i) })
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// strongBullishCloses jumps from a 90 base to a tight range near 100 twenty
// bars ago: price sits at its recent low with RSI above its low and +11%
// momentum.
func strongBullishCloses() []float64 {
	return concat(alternating(280, 90, 0.5, false), alternating(20, 100, 0.5, true))
}
