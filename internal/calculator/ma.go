package calculator

import (
	"errors"
	"fmt"
)

// ErrNotEnoughData is returned when a rolling window exceeds the available history.
var ErrNotEnoughData = errors.New("not enough data")

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, fmt.Errorf("SMA(%d) over %d values: %w", period, len(prices), ErrNotEnoughData)
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEnvelope returns the envelope SMA over length bars and the bands
// percent above and below it.
func CalculateEnvelope(closes []float64, length int, percent float64) (sma, upper, lower float64, err error) {
	sma, err = CalculateSMA(closes, length)
	if err != nil {
		return 0, 0, 0, err
	}
	return sma, sma * (1 + percent/100), sma * (1 - percent/100), nil
}

// CalculateVolumeTrend returns the ratio of the 20-bar to the 50-bar average volume.
func CalculateVolumeTrend(volumes []float64) (float64, error) {
	short, err := CalculateSMA(volumes, 20)
	if err != nil {
		return 0, err
	}
	long, err := CalculateSMA(volumes, 50)
	if err != nil {
		return 0, err
	}
	if long == 0 {
		return 0, errors.New("zero average volume")
	}
	return short / long, nil
}
