package strategy

import (
	"math"

	"StockSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// envelopeCondition is the price-vs-envelope part of a decision key.
type envelopeCondition int

const (
	anyEnvelope   envelopeCondition = iota
	belowEnvelope                   // price <= envelope SMA
	aboveEnvelope                   // price > envelope SMA
)

func (c envelopeCondition) holds(price, envelope float64) bool {
	switch c {
	case belowEnvelope:
		return price <= envelope
	case aboveEnvelope:
		return price > envelope
	default:
		return true
	}
}

// scoreBucket is the overall-score part of a decision key.
type scoreBucket func(score float64) bool

func anyScore(float64) bool { return true }

func atLeast(min float64) scoreBucket { return func(s float64) bool { return s >= min } }
func below(max float64) scoreBucket   { return func(s float64) bool { return s < max } }
func atMost(max float64) scoreBucket  { return func(s float64) bool { return s <= max } }
func above(min float64) scoreBucket   { return func(s float64) bool { return s > min } }

// confidenceFormula maps the overall score to a confidence percentage.
type confidenceFormula func(score float64) float64

func strongBuyConfidence(s float64) float64  { return math.Min(95, 80+(s-70)/2) }
func bullishConfidence(s float64) float64    { return math.Min(85, 70+(s-60)/2) }
func downgradeConfidence(s float64) float64  { return math.Min(70, 60+(s-50)/3) }
func strongSellConfidence(s float64) float64 { return math.Min(95, 80+(30-s)/2) }
func bearishConfidence(s float64) float64    { return math.Min(85, 70+(40-s)/2) }
func neutralConfidence(s float64) float64    { return math.Min(80, 50+math.Abs(s-50)/2) }

// decision is one cell of the recommendation table.
type decision struct {
	Signals    []model.DivergenceSignal
	Envelope   envelopeCondition
	Bucket     scoreBucket
	Label      model.Recommendation
	Target     float64 // multiplier applied to the current price
	Confidence confidenceFormula
}

var (
	strongBullish = []model.DivergenceSignal{model.DivergenceStrongBullish}
	bullish       = []model.DivergenceSignal{model.DivergenceBullish, model.DivergenceHiddenBullish}
	strongBearish = []model.DivergenceSignal{model.DivergenceStrongBearish}
	bearish       = []model.DivergenceSignal{model.DivergenceBearish, model.DivergenceHiddenBearish}
	neutral       = []model.DivergenceSignal{model.DivergenceNeutral}
)

// decisionTable is walked top to bottom; the first cell whose key matches wins.
// Bullish-leaning signals only produce buys at or below the envelope SMA.
var decisionTable = []decision{
	{strongBullish, belowEnvelope, anyScore, model.StrongBuy, 1.15, strongBuyConfidence},
	{strongBullish, aboveEnvelope, anyScore, model.Hold, 1.00, downgradeConfidence},

	{bullish, belowEnvelope, atLeast(65), model.Buy, 1.12, bullishConfidence},
	{bullish, belowEnvelope, below(65), model.WeakBuy, 1.08, bullishConfidence},
	{bullish, aboveEnvelope, atLeast(65), model.Hold, 1.00, downgradeConfidence},
	{bullish, aboveEnvelope, below(65), model.WeakSell, 0.95, downgradeConfidence},

	{strongBearish, anyEnvelope, anyScore, model.StrongSell, 0.85, strongSellConfidence},

	{bearish, anyEnvelope, atMost(35), model.Sell, 0.88, bearishConfidence},
	{bearish, anyEnvelope, above(35), model.WeakSell, 0.95, bearishConfidence},

	{neutral, anyEnvelope, atLeast(75), model.StrongBuy, 1.15, neutralConfidence},
	{neutral, anyEnvelope, atLeast(65), model.Buy, 1.12, neutralConfidence},
	{neutral, anyEnvelope, atLeast(55), model.WeakBuy, 1.08, neutralConfidence},
	{neutral, anyEnvelope, atLeast(45), model.Hold, 1.00, neutralConfidence},
	{neutral, anyEnvelope, atLeast(35), model.WeakSell, 0.95, neutralConfidence},
	{neutral, anyEnvelope, atLeast(25), model.Sell, 0.88, neutralConfidence},
	{neutral, anyEnvelope, anyScore, model.StrongSell, 0.85, neutralConfidence},
}

func (d decision) matches(signal model.DivergenceSignal, price, envelope, score float64) bool {
	for _, s := range d.Signals {
		if s == signal {
			return d.Envelope.holds(price, envelope) && d.Bucket(score)
		}
	}
	return false
}

// RecommendationInput collects everything the decision needs.
type RecommendationInput struct {
	TechnicalScore   int
	FundamentalScore int
	Divergence       model.DivergenceVerdict
	CurrentPrice     float64
	EnvelopeSMA      float64
}

// OverallScore weights the three sub-scores.
func OverallScore(in RecommendationInput, cfg Config) float64 {
	return float64(in.Divergence.Score)*cfg.DivergenceWeight +
		float64(in.FundamentalScore)*cfg.FundamentalWeight +
		float64(in.TechnicalScore)*cfg.TechnicalWeight
}

// Recommend turns the sub-scores into a label, target price and confidence.
// Any non-finite intermediate fails safe to HOLD at the current price.
func Recommend(in RecommendationInput, cfg Config) model.RecommendationResult {
	fallback := model.RecommendationResult{
		Recommendation: model.Hold,
		OverallScore:   50.0,
		TargetPrice:    in.CurrentPrice,
		Confidence:     50.0,
	}

	overall := OverallScore(in, cfg)
	if !finite(overall) || !finite(in.CurrentPrice) || !finite(in.EnvelopeSMA) {
		return fallback
	}

	for _, d := range decisionTable {
		if !d.matches(in.Divergence.Signal, in.CurrentPrice, in.EnvelopeSMA, overall) {
			continue
		}
		target := in.CurrentPrice * d.Target
		confidence := d.Confidence(overall)
		if !finite(target) || !finite(confidence) {
			return fallback
		}
		return model.RecommendationResult{
			Recommendation: d.Label,
			OverallScore:   round(overall, 1),
			TargetPrice:    round(target, 2),
			Confidence:     round(confidence, 1),
		}
	}
	// Unknown divergence category.
	return fallback
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// round rounds half away from zero to places decimals.
func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
