package calculator

import (
	"errors"
	"fmt"
)

// CalculateRateOfChange returns the fractional change of the latest close
// over lookback bars (0.05 means +5%).
func CalculateRateOfChange(closes []float64, lookback int) (float64, error) {
	if lookback <= 0 {
		return 0, errors.New("lookback must be positive")
	}
	if len(closes) < lookback+1 {
		return 0, fmt.Errorf("ROC(%d) over %d values: %w", lookback, len(closes), ErrNotEnoughData)
	}
	base := closes[len(closes)-1-lookback]
	if base == 0 {
		return 0, errors.New("zero base price")
	}
	return (closes[len(closes)-1] - base) / base, nil
}
