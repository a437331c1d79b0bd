package collector

import (
	"context"
	"errors"
	"math"

	"StockSentinel/internal/model"
)

// ErrNoData is returned when a source answers but has no bars for a symbol.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchDailyBars returns up to days calendar days of daily bars, oldest first.
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	// FetchFundamentals returns the latest ratios; absent values are nil.
	FetchFundamentals(ctx context.Context, symbol string) (model.FundamentalSnapshot, error)
	Name() string
}

// ratioOrNil treats a nil or zero provider value as absent.
func ratioOrNil(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return model.Ratio(*v)
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
