package calculator

import (
	"math"
	"testing"
	"time"

	"StockSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBars(n int, closeAt func(i int) float64) []model.OHLCV {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := 0; i < n; i++ {
		c := closeAt(i)
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

func TestCalculateSMA(t *testing.T) {
	sma, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, sma, 1e-9)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, ErrNotEnoughData)

	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestCalculateEnvelope(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100
	}
	sma, upper, lower, err := CalculateEnvelope(closes, 200, 14)
	require.NoError(t, err)
	assert.InDelta(t, 100, sma, 1e-9)
	assert.InDelta(t, 114, upper, 1e-9)
	assert.InDelta(t, 86, lower, 1e-9)
}

func TestRSISeries(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"flat", []float64{10, 10, 10, 10, 10}, 50},
		{"only gains", []float64{1, 2, 3, 4, 5}, 100},
		{"only losses", []float64{5, 4, 3, 2, 1}, 0},
		{"equal swings", []float64{10, 11, 10, 11, 10}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := RSISeries(tt.closes, 4)
			require.Len(t, series, len(tt.closes))
			assert.True(t, math.IsNaN(series[0]))
			assert.InDelta(t, tt.want, series[len(series)-1], 1e-9)
		})
	}
}

func TestRollingRSISeries(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"only gains", []float64{1, 2, 3, 4, 5}, 100},
		{"only losses", []float64{5, 4, 3, 2, 1}, 0},
		{"equal swings", []float64{10, 11, 10, 11, 10}, 50},
		{"three gains one loss", []float64{10, 11, 12, 13, 12}, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := RollingRSISeries(tt.closes, 4)
			require.Len(t, series, len(tt.closes))
			for i := 0; i < 4; i++ {
				assert.True(t, math.IsNaN(series[i]), "warm-up entry %d", i)
			}
			assert.InDelta(t, tt.want, series[len(series)-1], 1e-9)
		})
	}
}

func TestRollingRSISeries_NoMovementIsNaN(t *testing.T) {
	series := RollingRSISeries([]float64{10, 11, 11, 11, 11, 11}, 3)
	assert.InDelta(t, 100, series[3], 1e-9)
	assert.True(t, math.IsNaN(series[4]))
	assert.True(t, math.IsNaN(series[5]))
}

func TestRollingRSISeries_ForgetsOldMoves(t *testing.T) {
	// The early crash leaves the window entirely; Wilder smoothing still remembers it.
	closes := []float64{10, 16, 10, 11, 12, 13}
	rolling := RollingRSISeries(closes, 3)
	wilder := RSISeries(closes, 3)
	assert.InDelta(t, 100, rolling[5], 1e-9)
	assert.Less(t, wilder[5], 90.0)
}

func TestCalculateRSI_Insufficient(t *testing.T) {
	rsi, err := CalculateRSI([]float64{1, 2, 3}, 14)
	assert.ErrorIs(t, err, ErrNotEnoughData)
	assert.Equal(t, 50.0, rsi)
}

func TestCalculateRateOfChange(t *testing.T) {
	roc, err := CalculateRateOfChange([]float64{100, 101, 102, 105}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, roc, 1e-9)

	_, err = CalculateRateOfChange([]float64{0, 1}, 1)
	assert.Error(t, err)
}

func TestCalculateMACD_Flat(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 42
	}
	macd, signal, err := CalculateMACD(closes, 12, 26, 9)
	require.NoError(t, err)
	assert.InDelta(t, 0, macd, 1e-9)
	assert.InDelta(t, 0, signal, 1e-9)

	_, _, err = CalculateMACD(closes[:20], 12, 26, 9)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestCalculateBollinger_SampleDeviation(t *testing.T) {
	upper, lower, err := CalculateBollinger([]float64{1, 2, 3, 4}, 4, 2)
	require.NoError(t, err)
	sd := math.Sqrt(5.0 / 3.0)
	assert.InDelta(t, 2.5+2*sd, upper, 1e-6)
	assert.InDelta(t, 2.5-2*sd, lower, 1e-6)

	_, _, err = CalculateBollinger([]float64{1, 2}, 4, 2)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestCalculateRange(t *testing.T) {
	bars := makeBars(30, func(i int) float64 { return float64(100 + i) })
	high, low, err := CalculateRange(bars, 20)
	require.NoError(t, err)
	assert.Equal(t, 130.0, high)
	assert.Equal(t, 109.0, low)

	_, _, err = CalculateRange(nil, 20)
	assert.Error(t, err)
}

func TestValueRange_SkipsNaN(t *testing.T) {
	high, low, err := ValueRange([]float64{math.NaN(), 3, 1, 2}, 10)
	require.NoError(t, err)
	assert.Equal(t, 3.0, high)
	assert.Equal(t, 1.0, low)

	_, _, err = ValueRange([]float64{math.NaN()}, 1)
	assert.Error(t, err)
}

func TestSnapshot_FlatSeries(t *testing.T) {
	bars := makeBars(300, func(int) float64 { return 100 })
	snap := Snapshot(bars, DefaultParams())

	assert.Equal(t, 50.0, snap.RSI14)
	assert.Equal(t, 50.0, snap.KnoxRSI)
	assert.InDelta(t, 0, snap.MACD, 1e-9)
	assert.InDelta(t, 100, snap.SMA20, 1e-9)
	assert.InDelta(t, 100, snap.SMA50, 1e-9)
	assert.InDelta(t, 100, snap.BBUpper, 1e-9)
	assert.InDelta(t, 100, snap.BBLower, 1e-9)
	assert.InDelta(t, 0, snap.Momentum, 1e-9)
	assert.InDelta(t, 100, snap.EnvelopeSMA, 1e-9)
	assert.InDelta(t, 114, snap.UpperEnvelope, 1e-9)
	assert.InDelta(t, 86, snap.LowerEnvelope, 1e-9)
	assert.InDelta(t, 1, snap.VolumeTrend, 1e-9)
}

func TestSnapshot_FiftyRisingBars(t *testing.T) {
	bars := makeBars(50, func(i int) float64 { return float64(100 + i) })
	snap := Snapshot(bars, DefaultParams())

	// Real formulas where the window fits.
	assert.Equal(t, 100.0, snap.RSI14)
	assert.InDelta(t, 139.5, snap.SMA20, 1e-9)
	assert.InDelta(t, 124.5, snap.SMA50, 1e-9)
	assert.Greater(t, snap.SMA20, snap.SMA50)
	assert.InDelta(t, 20.0/129.0*100, snap.Momentum, 1e-9)

	// Envelope window exceeds the history: last close.
	assert.Equal(t, 149.0, snap.EnvelopeSMA)
	assert.Equal(t, 149.0, snap.UpperEnvelope)
	assert.Equal(t, 149.0, snap.LowerEnvelope)
}

func TestSnapshot_ShortSeriesNeverPanics(t *testing.T) {
	bars := makeBars(3, func(i int) float64 { return float64(10 + i) })
	snap := Snapshot(bars, DefaultParams())
	assert.Equal(t, 50.0, snap.RSI14)
	assert.Equal(t, 0.0, snap.MACD)
	assert.Equal(t, 0.0, snap.Momentum)
	assert.Equal(t, 1.0, snap.VolumeTrend)
	assert.Equal(t, 12.0, snap.SMA20)

	empty := Snapshot(nil, DefaultParams())
	assert.Equal(t, 50.0, empty.RSI14)
	assert.Equal(t, 1.0, empty.VolumeTrend)
}
