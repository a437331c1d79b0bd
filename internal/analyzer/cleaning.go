package analyzer

import (
	"errors"
	"fmt"
	"math"

	"StockSentinel/internal/model"
)

// MinBars is the shortest usable history, before and after cleaning.
const MinBars = 50

const defaultVolume = 1_000_000

// ErrInsufficientData is returned when a symbol has too little usable history.
var ErrInsufficientData = errors.New("insufficient data")

// CleanBars repairs a raw series and returns the usable bars in order.
//
// A series reported without any volume gets a synthetic one proportional to
// the bar's relative range; missing opens take the previous close. Bars
// missing close, high or low are dropped. Remaining volume gaps are forward
// filled, then defaulted.
func CleanBars(raw []model.OHLCV) []model.OHLCV {
	if len(raw) == 0 {
		return nil
	}
	bars := make([]model.OHLCV, len(raw))
	copy(bars, raw)

	if allMissing(bars, func(b model.OHLCV) float64 { return b.Volume }) {
		for i := range bars {
			b := &bars[i]
			b.Volume = (b.High - b.Low) / b.Close * defaultVolume
			if math.IsInf(b.Volume, 0) {
				b.Volume = math.NaN()
			}
		}
	}

	for i := range bars {
		if !model.Missing(bars[i].Open) {
			continue
		}
		if i > 0 && !model.Missing(bars[i-1].Close) {
			bars[i].Open = bars[i-1].Close
		} else {
			bars[i].Open = bars[i].Close
		}
	}

	out := bars[:0]
	for _, b := range bars {
		if model.Missing(b.Close) || model.Missing(b.High) || model.Missing(b.Low) {
			continue
		}
		out = append(out, b)
	}

	lastVolume := math.NaN()
	for i := range out {
		if model.Missing(out[i].Volume) {
			out[i].Volume = lastVolume
		} else {
			lastVolume = out[i].Volume
		}
		if model.Missing(out[i].Volume) {
			out[i].Volume = defaultVolume
		}
	}
	return out
}

func allMissing(bars []model.OHLCV, field func(model.OHLCV) float64) bool {
	for _, b := range bars {
		if !model.Missing(field(b)) {
			return false
		}
	}
	return true
}

func insufficient(symbol string, have int, stage string) error {
	return fmt.Errorf("%s: %w (%d %s bars, need %d)", symbol, ErrInsufficientData, have, stage, MinBars)
}
