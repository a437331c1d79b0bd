package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockSentinel/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// barsClient is the part of the Alpaca market data client the fetcher uses.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using Alpaca market data. Alpaca has no
// fundamentals, so FetchFundamentals always returns an empty snapshot.
type AlpacaFetcher struct {
	client barsClient
	feed   marketdata.Feed
}

// NewAlpacaFetcher creates a fetcher. Empty credentials fall back to the
// APCA_API_KEY_ID and APCA_API_SECRET_KEY environment variables.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		feed: marketdata.IEX,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars, err := f.client.GetBars(strings.ToUpper(symbol), marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     time.Now().AddDate(0, 0, -days),
		Feed:      f.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("alpaca %s: %w", symbol, ErrNoData)
	}

	result := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		result = append(result, model.OHLCV{
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return result, nil
}

func (f *AlpacaFetcher) FetchFundamentals(context.Context, string) (model.FundamentalSnapshot, error) {
	return model.FundamentalSnapshot{}, nil
}
