package strategy

import (
	"math"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// recentBars is the span, at the end of the lookback window, whose extremes
// are compared with the current bar.
const recentBars = 20

// observation is what the divergence rules look at.
type observation struct {
	CurrentPrice float64
	PriceHigh    float64
	PriceLow     float64
	CurrentRSI   float64
	RSIHigh      float64
	RSILow       float64
	Momentum     float64 // fractional change, 0.05 means +5%
}

func (o observation) finite() bool {
	for _, v := range []float64{o.CurrentPrice, o.PriceHigh, o.PriceLow, o.CurrentRSI, o.RSIHigh, o.RSILow, o.Momentum} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Price near the recent low while RSI holds above its low.
func (o observation) bullish() bool {
	return o.CurrentPrice <= o.PriceLow*1.02 && o.CurrentRSI > o.RSILow*1.1
}

// Price near the recent high while RSI fades below its high.
func (o observation) bearish() bool {
	return o.CurrentPrice >= o.PriceHigh*0.98 && o.CurrentRSI < o.RSIHigh*0.9
}

func (o observation) hiddenBullish() bool {
	return o.CurrentPrice > o.PriceLow*1.05 && o.CurrentRSI < o.RSILow*1.05
}

func (o observation) hiddenBearish() bool {
	return o.CurrentPrice < o.PriceHigh*0.95 && o.CurrentRSI > o.RSIHigh*0.95
}

// divergenceRules is evaluated top to bottom; the first match wins.
var divergenceRules = []struct {
	Signal  model.DivergenceSignal
	Matches func(observation) bool
}{
	{model.DivergenceStrongBullish, func(o observation) bool { return o.bullish() && o.Momentum > 0.05 }},
	{model.DivergenceBullish, observation.bullish},
	{model.DivergenceStrongBearish, func(o observation) bool { return o.bearish() && o.Momentum < -0.05 }},
	{model.DivergenceBearish, observation.bearish},
	{model.DivergenceHiddenBullish, observation.hiddenBullish},
	{model.DivergenceHiddenBearish, observation.hiddenBearish},
}

// classify maps an observation to its verdict.
func classify(o observation) model.DivergenceVerdict {
	if !o.finite() {
		return model.NewVerdict(model.DivergenceNeutral)
	}
	for _, r := range divergenceRules {
		if r.Matches(o) {
			return model.NewVerdict(r.Signal)
		}
	}
	return model.NewVerdict(model.DivergenceNeutral)
}

// DetectDivergence classifies the latest bar of bars. Series shorter than
// the lookback window are NEUTRAL.
func DetectDivergence(bars []model.OHLCV, cfg Config) model.DivergenceVerdict {
	if cfg.KnoxBarsBack <= 0 || len(bars) < cfg.KnoxBarsBack {
		return model.NewVerdict(model.DivergenceNeutral)
	}
	o, ok := observe(bars, cfg)
	if !ok {
		return model.NewVerdict(model.DivergenceNeutral)
	}
	return classify(o)
}

func observe(bars []model.OHLCV, cfg Config) (observation, bool) {
	closes := model.Closes(bars)
	rsi := calculator.RollingRSISeries(closes, cfg.KnoxRSIPeriod)

	momentum, err := calculator.CalculateRateOfChange(closes, cfg.KnoxMomentumPeriod)
	if err != nil {
		momentum = 0
	}

	window := bars[len(bars)-cfg.KnoxBarsBack:]
	rsiWindow := rsi[len(rsi)-cfg.KnoxBarsBack:]

	priceHigh, priceLow, err := calculator.CalculateRange(window, recentBars)
	if err != nil {
		return observation{}, false
	}
	rsiHigh, rsiLow, err := calculator.ValueRange(rsiWindow, recentBars)
	if err != nil {
		return observation{}, false
	}

	return observation{
		CurrentPrice: closes[len(closes)-1],
		PriceHigh:    priceHigh,
		PriceLow:     priceLow,
		CurrentRSI:   rsi[len(rsi)-1],
		RSIHigh:      rsiHigh,
		RSILow:       rsiLow,
		Momentum:     momentum,
	}, true
}
