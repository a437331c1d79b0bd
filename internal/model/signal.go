package model

// DivergenceSignal classifies recent price action against the fast RSI.
type DivergenceSignal string

const (
	DivergenceStrongBullish DivergenceSignal = "STRONG_BULLISH"
	DivergenceBullish       DivergenceSignal = "BULLISH"
	DivergenceHiddenBullish DivergenceSignal = "HIDDEN_BULLISH"
	DivergenceNeutral       DivergenceSignal = "NEUTRAL"
	DivergenceHiddenBearish DivergenceSignal = "HIDDEN_BEARISH"
	DivergenceBearish       DivergenceSignal = "BEARISH"
	DivergenceStrongBearish DivergenceSignal = "STRONG_BEARISH"
)

// Score returns the fixed score tied to the category strength.
func (s DivergenceSignal) Score() int {
	switch s {
	case DivergenceStrongBullish:
		return 85
	case DivergenceBullish:
		return 75
	case DivergenceHiddenBullish:
		return 65
	case DivergenceHiddenBearish:
		return 35
	case DivergenceBearish:
		return 25
	case DivergenceStrongBearish:
		return 15
	default:
		return 50
	}
}

// DivergenceVerdict is the output of the divergence detector.
type DivergenceVerdict struct {
	Signal DivergenceSignal `json:"signal"`
	Score  int              `json:"score"`
}

// NewVerdict builds the verdict for a category.
func NewVerdict(s DivergenceSignal) DivergenceVerdict {
	return DivergenceVerdict{Signal: s, Score: s.Score()}
}

// Recommendation is the discrete buy/sell label.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	WeakBuy    Recommendation = "WEAK_BUY"
	Hold       Recommendation = "HOLD"
	WeakSell   Recommendation = "WEAK_SELL"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// Recommendations lists every label from most bullish to most bearish.
var Recommendations = []Recommendation{StrongBuy, Buy, WeakBuy, Hold, WeakSell, Sell, StrongSell}

// RecommendationResult is the final output of the recommendation engine.
type RecommendationResult struct {
	Recommendation Recommendation `json:"recommendation"`
	OverallScore   float64        `json:"overall_score"`
	TargetPrice    float64        `json:"target_price"`
	Confidence     float64        `json:"confidence"`
}

// FactorScore is one sub-score's contribution to the overall score.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}
