package strategy

import "StockSentinel/internal/model"

// Rule adjusts a running score when its predicate holds.
type Rule[T any] struct {
	Name    string
	Applies func(T) bool
	Adjust  int
}

// baseScore is the neutral starting point of every scorer.
const baseScore = 50

// applyRules evaluates every rule independently, sums the adjustments onto
// baseScore and clamps to [0,100]. It returns the names of the rules that matched.
func applyRules[T any](rules []Rule[T], in T) (int, []string) {
	score := baseScore
	var matched []string
	for _, r := range rules {
		if r.Applies(in) {
			score += r.Adjust
			matched = append(matched, r.Name)
		}
	}
	return clampScore(score), matched
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// present wraps a predicate over an optional ratio; absent values never match.
func present(field func(model.FundamentalSnapshot) *float64, pred func(float64) bool) func(model.FundamentalSnapshot) bool {
	return func(f model.FundamentalSnapshot) bool {
		v := field(f)
		return v != nil && pred(*v)
	}
}

func pe(f model.FundamentalSnapshot) *float64     { return f.PERatio }
func pb(f model.FundamentalSnapshot) *float64     { return f.PBRatio }
func roe(f model.FundamentalSnapshot) *float64    { return f.ROE }
func margin(f model.FundamentalSnapshot) *float64 { return f.ProfitMargin }
func growth(f model.FundamentalSnapshot) *float64 { return f.RevenueGrowth }

// FundamentalRules scores valuation and profitability ratios.
var FundamentalRules = []Rule[model.FundamentalSnapshot]{
	{"pe_fair", present(pe, func(v float64) bool { return v >= 5 && v <= 25 }), 10},
	{"pe_suspiciously_low", present(pe, func(v float64) bool { return v < 5 }), -5},
	{"pe_expensive", present(pe, func(v float64) bool { return v > 40 }), -10},
	{"pb_cheap", present(pb, func(v float64) bool { return v < 3 }), 10},
	{"pb_expensive", present(pb, func(v float64) bool { return v > 5 }), -10},
	{"roe_strong", present(roe, func(v float64) bool { return v > 0.15 }), 15},
	{"roe_good", present(roe, func(v float64) bool { return v > 0.10 && v <= 0.15 }), 10},
	{"roe_negative", present(roe, func(v float64) bool { return v < 0 }), -15},
	{"margin_healthy", present(margin, func(v float64) bool { return v > 0.10 }), 10},
	{"margin_negative", present(margin, func(v float64) bool { return v < 0 }), -10},
	{"growth_strong", present(growth, func(v float64) bool { return v > 0.15 }), 10},
	{"growth_negative", present(growth, func(v float64) bool { return v < 0 }), -10},
}

// TechnicalRules scores the indicator snapshot.
var TechnicalRules = []Rule[model.TechnicalSnapshot]{
	{"rsi_neutral", func(s model.TechnicalSnapshot) bool { return s.RSI14 >= 30 && s.RSI14 <= 70 }, 10},
	{"rsi_oversold", func(s model.TechnicalSnapshot) bool { return s.RSI14 < 30 }, 15},
	{"rsi_overbought", func(s model.TechnicalSnapshot) bool { return s.RSI14 > 70 }, -15},
	{"macd_above_signal", func(s model.TechnicalSnapshot) bool { return s.MACD > s.MACDSignal }, 10},
	{"macd_below_signal", func(s model.TechnicalSnapshot) bool { return !(s.MACD > s.MACDSignal) }, -10},
	// SMA20 stands in for the current price against the trend.
	{"sma_uptrend", func(s model.TechnicalSnapshot) bool { return s.SMA20 > s.SMA50 }, 10},
	{"sma_downtrend", func(s model.TechnicalSnapshot) bool { return !(s.SMA20 > s.SMA50) }, -10},
	{"volume_rising", func(s model.TechnicalSnapshot) bool { return s.VolumeTrend > 1.2 }, 5},
	{"volume_fading", func(s model.TechnicalSnapshot) bool { return s.VolumeTrend < 0.8 }, -5},
}

// ScoreFundamentals maps a ratio snapshot to a 0-100 score.
func ScoreFundamentals(f model.FundamentalSnapshot) (int, []string) {
	return applyRules(FundamentalRules, f)
}

// ScoreTechnical maps an indicator snapshot to a 0-100 score.
func ScoreTechnical(s model.TechnicalSnapshot) (int, []string) {
	return applyRules(TechnicalRules, s)
}
