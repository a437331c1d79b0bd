package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without explicit bars get a gently trending generated series.
type MockFetcher struct {
	Price        float64
	Bars         map[string][]model.OHLCV
	Fundamentals map[string]model.FundamentalSnapshot
	Errors       map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many bar requests were made for symbol.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	if m.Price <= 0 {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
	}
	return generateMockBars(m.Price, days), nil
}

func (m *MockFetcher) FetchFundamentals(_ context.Context, symbol string) (model.FundamentalSnapshot, error) {
	return m.Fundamentals[symbol], nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
