package strategy

import (
	"math"
	"testing"

	"StockSentinel/internal/model"

	"github.com/stretchr/testify/assert"
)

// fundamentalOnly makes the overall score equal to the fundamental score so
// each decision cell can be addressed directly.
func fundamentalOnly() Config {
	cfg := DefaultConfig()
	cfg.DivergenceWeight = 0
	cfg.FundamentalWeight = 1
	cfg.TechnicalWeight = 0
	return cfg
}

func TestOverallScore_DefaultWeights(t *testing.T) {
	in := RecommendationInput{
		Divergence:       model.NewVerdict(model.DivergenceStrongBullish),
		FundamentalScore: 40,
		TechnicalScore:   60,
		CurrentPrice:     100,
		EnvelopeSMA:      100,
	}
	got := Recommend(in, DefaultConfig())
	assert.Equal(t, 69.0, got.OverallScore)
	assert.Equal(t, model.StrongBuy, got.Recommendation)
	assert.Equal(t, 115.0, got.TargetPrice)
	assert.Equal(t, 79.5, got.Confidence)
}

func TestRecommend_DecisionTable(t *testing.T) {
	tests := []struct {
		name       string
		signal     model.DivergenceSignal
		price      float64
		envelope   float64
		score      int
		label      model.Recommendation
		target     float64
		confidence float64
	}{
		{"strong bullish below envelope", model.DivergenceStrongBullish, 100, 120, 80, model.StrongBuy, 115, 85},
		{"strong bullish at envelope", model.DivergenceStrongBullish, 100, 100, 60, model.StrongBuy, 115, 75},
		{"strong bullish above envelope", model.DivergenceStrongBullish, 100, 90, 80, model.Hold, 100, 70},

		{"bullish below envelope high score", model.DivergenceBullish, 100, 120, 65, model.Buy, 112, 72.5},
		{"bullish below envelope low score", model.DivergenceBullish, 100, 120, 64, model.WeakBuy, 108, 72},
		{"bullish above envelope high score", model.DivergenceBullish, 100, 90, 70, model.Hold, 100, 66.7},
		{"bullish above envelope low score", model.DivergenceBullish, 100, 90, 55, model.WeakSell, 95, 61.7},
		{"hidden bullish below envelope", model.DivergenceHiddenBullish, 100, 120, 90, model.Buy, 112, 85},
		{"hidden bullish above envelope", model.DivergenceHiddenBullish, 100, 90, 40, model.WeakSell, 95, 56.7},

		{"strong bearish", model.DivergenceStrongBearish, 100, 90, 10, model.StrongSell, 85, 90},
		{"strong bearish capped", model.DivergenceStrongBearish, 100, 120, 0, model.StrongSell, 85, 95},

		{"bearish low score", model.DivergenceBearish, 100, 90, 35, model.Sell, 88, 72.5},
		{"bearish high score", model.DivergenceBearish, 100, 90, 36, model.WeakSell, 95, 72},
		{"hidden bearish low score", model.DivergenceHiddenBearish, 100, 120, 20, model.Sell, 88, 80},
		{"hidden bearish high score", model.DivergenceHiddenBearish, 100, 120, 60, model.WeakSell, 95, 60},

		{"neutral strong buy", model.DivergenceNeutral, 100, 90, 75, model.StrongBuy, 115, 62.5},
		{"neutral buy", model.DivergenceNeutral, 100, 90, 65, model.Buy, 112, 57.5},
		{"neutral weak buy", model.DivergenceNeutral, 100, 90, 55, model.WeakBuy, 108, 52.5},
		{"neutral hold", model.DivergenceNeutral, 100, 90, 45, model.Hold, 100, 52.5},
		{"neutral weak sell", model.DivergenceNeutral, 100, 90, 35, model.WeakSell, 95, 57.5},
		{"neutral sell", model.DivergenceNeutral, 100, 90, 25, model.Sell, 88, 62.5},
		{"neutral strong sell", model.DivergenceNeutral, 100, 90, 24, model.StrongSell, 85, 63},
		{"neutral capped confidence", model.DivergenceNeutral, 100, 90, 0, model.StrongSell, 85, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := RecommendationInput{
				Divergence:       model.NewVerdict(tt.signal),
				FundamentalScore: tt.score,
				CurrentPrice:     tt.price,
				EnvelopeSMA:      tt.envelope,
			}
			got := Recommend(in, fundamentalOnly())
			assert.Equal(t, tt.label, got.Recommendation)
			assert.Equal(t, float64(tt.score), got.OverallScore)
			assert.InDelta(t, tt.target, got.TargetPrice, 1e-9)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
		})
	}
}

func TestRecommend_NoBuyAboveEnvelope(t *testing.T) {
	buys := map[model.Recommendation]bool{model.StrongBuy: true, model.Buy: true, model.WeakBuy: true}
	signals := []model.DivergenceSignal{
		model.DivergenceStrongBullish,
		model.DivergenceBullish,
		model.DivergenceHiddenBullish,
	}
	for _, signal := range signals {
		for score := 0; score <= 100; score++ {
			in := RecommendationInput{
				Divergence:       model.NewVerdict(signal),
				FundamentalScore: score,
				CurrentPrice:     101,
				EnvelopeSMA:      100,
			}
			got := Recommend(in, fundamentalOnly())
			assert.False(t, buys[got.Recommendation], "%s score %d gave %s", signal, score, got.Recommendation)
		}
	}
}

func TestRecommend_FailSafe(t *testing.T) {
	tests := []struct {
		name string
		in   RecommendationInput
	}{
		{"nan envelope", RecommendationInput{Divergence: model.NewVerdict(model.DivergenceBullish), CurrentPrice: 100, EnvelopeSMA: math.NaN()}},
		{"infinite price", RecommendationInput{Divergence: model.NewVerdict(model.DivergenceNeutral), CurrentPrice: math.Inf(1), EnvelopeSMA: 100}},
		{"unknown signal", RecommendationInput{Divergence: model.DivergenceVerdict{Signal: "SIDEWAYS", Score: 50}, CurrentPrice: 100, EnvelopeSMA: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommend(tt.in, DefaultConfig())
			assert.Equal(t, model.Hold, got.Recommendation)
			assert.Equal(t, 50.0, got.OverallScore)
			assert.Equal(t, 50.0, got.Confidence)
		})
	}
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 66.7, round(66.66666, 1))
	assert.Equal(t, 0.13, round(0.125, 2))
	assert.Equal(t, -0.13, round(-0.125, 2))
	assert.Equal(t, 112.0, round(100*1.12, 2))
}
