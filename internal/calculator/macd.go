package calculator

import (
	"errors"
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"
)

// CalculateMACD returns the latest MACD line (EMA(fast) - EMA(slow)) and its
// EMA(signal) signal line.
func CalculateMACD(closes []float64, fast, slow, signal int) (macd, macdSignal float64, err error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return 0, 0, errors.New("invalid MACD periods")
	}
	lookback := (slow - 1) + (signal - 1)
	if len(closes) <= lookback {
		return 0, 0, fmt.Errorf("MACD(%d,%d,%d) over %d values: %w", fast, slow, signal, len(closes), ErrNotEnoughData)
	}
	macdLine, signalLine, _ := talib.Macd(closes, fast, slow, signal)
	n := len(closes) - 1
	return macdLine[n], signalLine[n], nil
}

// CalculateBollinger returns the upper and lower bands at k sample standard
// deviations around the period SMA.
func CalculateBollinger(closes []float64, period int, k float64) (upper, lower float64, err error) {
	if period <= 1 {
		return 0, 0, errors.New("period must be greater than one")
	}
	if len(closes) < period {
		return 0, 0, fmt.Errorf("Bollinger(%d) over %d values: %w", period, len(closes), ErrNotEnoughData)
	}
	// talib's deviation is the population one.
	k *= math.Sqrt(float64(period) / float64(period-1))
	up, _, low := talib.BBands(closes, period, k, k, talib.SMA)
	n := len(closes) - 1
	return up[n], low[n], nil
}
