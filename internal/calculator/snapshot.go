package calculator

import (
	"math"

	"StockSentinel/internal/model"

	"github.com/rs/zerolog/log"
)

// Params holds the configurable indicator windows.
type Params struct {
	EnvelopeLength  int
	EnvelopePercent float64
	KnoxRSIPeriod   int
	MomentumPeriod  int
}

// DefaultParams returns the standard indicator windows.
func DefaultParams() Params {
	return Params{
		EnvelopeLength:  200,
		EnvelopePercent: 14,
		KnoxRSIPeriod:   7,
		MomentumPeriod:  20,
	}
}

// Snapshot computes every technical indicator for the latest bar. An
// indicator whose window exceeds the history falls back to the last close
// (bands, averages) or a neutral value (RSI 50, MACD 0, momentum 0,
// volume trend 1).
func Snapshot(bars []model.OHLCV, p Params) model.TechnicalSnapshot {
	logger := log.With().Str("component", "calculator").Logger()
	if len(bars) == 0 {
		return model.TechnicalSnapshot{RSI14: 50, KnoxRSI: 50, VolumeTrend: 1}
	}

	closes := model.Closes(bars)
	last := closes[len(closes)-1]
	snap := model.TechnicalSnapshot{}

	if rsi, err := CalculateRSI(closes, 14); err != nil {
		logger.Debug().Err(err).Msg("RSI(14) unavailable, defaulting to 50")
		snap.RSI14 = 50
	} else {
		snap.RSI14 = rsi
	}

	knox := RollingRSISeries(closes, p.KnoxRSIPeriod)
	if rsi := knox[len(knox)-1]; math.IsNaN(rsi) {
		logger.Debug().Int("period", p.KnoxRSIPeriod).Msg("Knox RSI unavailable, defaulting to 50")
		snap.KnoxRSI = 50
	} else {
		snap.KnoxRSI = rsi
	}

	if macd, signal, err := CalculateMACD(closes, 12, 26, 9); err != nil {
		logger.Debug().Err(err).Msg("MACD unavailable, defaulting to 0")
	} else {
		snap.MACD = macd
		snap.MACDSignal = signal
	}

	if upper, lower, err := CalculateBollinger(closes, 20, 2); err != nil {
		logger.Debug().Err(err).Msg("Bollinger bands unavailable, using last close")
		snap.BBUpper, snap.BBLower = last, last
	} else {
		snap.BBUpper, snap.BBLower = upper, lower
	}

	if sma, err := CalculateSMA(closes, 20); err != nil {
		snap.SMA20 = last
	} else {
		snap.SMA20 = sma
	}

	if sma, err := CalculateSMA(closes, 50); err != nil {
		snap.SMA50 = last
	} else {
		snap.SMA50 = sma
	}

	if roc, err := CalculateRateOfChange(closes, p.MomentumPeriod); err != nil {
		logger.Debug().Err(err).Msg("momentum unavailable, defaulting to 0")
	} else {
		snap.Momentum = roc * 100
	}

	if sma, upper, lower, err := CalculateEnvelope(closes, p.EnvelopeLength, p.EnvelopePercent); err != nil {
		logger.Debug().Err(err).Msg("envelope unavailable, using last close")
		snap.EnvelopeSMA, snap.UpperEnvelope, snap.LowerEnvelope = last, last, last
	} else {
		snap.EnvelopeSMA, snap.UpperEnvelope, snap.LowerEnvelope = sma, upper, lower
	}

	if trend, err := CalculateVolumeTrend(model.Volumes(bars)); err != nil {
		snap.VolumeTrend = 1
	} else {
		snap.VolumeTrend = trend
	}

	return snap
}
