package strategy

import (
	"fmt"
	"strings"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// Evaluation is everything the engine derives from one cleaned series.
type Evaluation struct {
	CurrentPrice     float64
	Technical        model.TechnicalSnapshot
	Divergence       model.DivergenceVerdict
	TechnicalScore   int
	FundamentalScore int
	Factors          []model.FactorScore
	Result           model.RecommendationResult
}

// Engine scores one instrument at a time. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an Engine bound to it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the settings the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Evaluate computes the full recommendation from cleaned bars and fundamentals.
func (e *Engine) Evaluate(bars []model.OHLCV, fundamentals model.FundamentalSnapshot) Evaluation {
	var current float64
	if len(bars) > 0 {
		current = bars[len(bars)-1].Close
	}

	// Step a: indicators and divergence
	tech := calculator.Snapshot(bars, e.cfg.IndicatorParams())
	verdict := DetectDivergence(bars, e.cfg)

	// Step b: sub-scores
	fundScore, fundRules := ScoreFundamentals(fundamentals)
	techScore, techRules := ScoreTechnical(tech)

	// Step c: weighted decision
	in := RecommendationInput{
		TechnicalScore:   techScore,
		FundamentalScore: fundScore,
		Divergence:       verdict,
		CurrentPrice:     current,
		EnvelopeSMA:      tech.EnvelopeSMA,
	}
	result := Recommend(in, e.cfg)

	factors := []model.FactorScore{
		factor("divergence", float64(verdict.Score), e.cfg.DivergenceWeight, string(verdict.Signal)),
		factor("fundamental", float64(fundScore), e.cfg.FundamentalWeight, commentary(fundRules)),
		factor("technical", float64(techScore), e.cfg.TechnicalWeight, commentary(techRules)),
	}

	return Evaluation{
		CurrentPrice:     current,
		Technical:        tech,
		Divergence:       verdict,
		TechnicalScore:   techScore,
		FundamentalScore: fundScore,
		Factors:          factors,
		Result:           result,
	}
}

func factor(name string, raw, weight float64, comment string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   raw,
		Weight:     weight,
		Weighted:   raw * weight,
		Commentary: comment,
	}
}

func commentary(matched []string) string {
	if len(matched) == 0 {
		return "no data"
	}
	return strings.Join(matched, ", ")
}
