package calculator

import (
	"errors"
	"math"

	"StockSentinel/internal/model"
)

// CalculateRange scans the most recent n bars and returns the highest High and lowest Low.
func CalculateRange(bars []model.OHLCV, n int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	start := len(bars) - n
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < len(bars); i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// ValueRange returns the max and min of the most recent n values, ignoring NaN.
func ValueRange(values []float64, n int) (high, low float64, err error) {
	start := len(values) - n
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < len(values); i++ {
		v := values[i]
		if math.IsNaN(v) {
			continue
		}
		high = math.Max(high, v)
		low = math.Min(low, v)
	}
	if math.IsInf(high, -1) {
		return 0, 0, errors.New("no values in range")
	}
	return high, low, nil
}
