package strategy

import (
	"fmt"
	"math"

	"StockSentinel/internal/calculator"
)

// Config holds the engine's tunable windows and weights. It is passed by
// value into every analysis, so parallel runs may use different settings.
type Config struct {
	EnvelopeLength     int     `yaml:"envelope_length"`
	EnvelopePercent    float64 `yaml:"envelope_percent"`
	KnoxBarsBack       int     `yaml:"knox_bars_back"`
	KnoxRSIPeriod      int     `yaml:"knox_rsi_period"`
	KnoxMomentumPeriod int     `yaml:"knox_momentum_period"`
	DivergenceWeight   float64 `yaml:"divergence_weight"`
	FundamentalWeight  float64 `yaml:"fundamental_weight"`
	TechnicalWeight    float64 `yaml:"technical_weight"`
}

// DefaultConfig returns the standard engine settings.
func DefaultConfig() Config {
	return Config{
		EnvelopeLength:     200,
		EnvelopePercent:    14,
		KnoxBarsBack:       200,
		KnoxRSIPeriod:      7,
		KnoxMomentumPeriod: 20,
		DivergenceWeight:   0.60,
		FundamentalWeight:  0.30,
		TechnicalWeight:    0.10,
	}
}

// Validate checks windows are positive and the weights sum to 1.
func (c Config) Validate() error {
	if c.EnvelopeLength <= 0 {
		return fmt.Errorf("envelope_length must be positive, got %d", c.EnvelopeLength)
	}
	if c.EnvelopePercent < 0 || c.EnvelopePercent >= 100 {
		return fmt.Errorf("envelope_percent must be in [0,100), got %g", c.EnvelopePercent)
	}
	if c.KnoxBarsBack <= 0 {
		return fmt.Errorf("knox_bars_back must be positive, got %d", c.KnoxBarsBack)
	}
	if c.KnoxRSIPeriod <= 0 {
		return fmt.Errorf("knox_rsi_period must be positive, got %d", c.KnoxRSIPeriod)
	}
	if c.KnoxMomentumPeriod <= 0 {
		return fmt.Errorf("knox_momentum_period must be positive, got %d", c.KnoxMomentumPeriod)
	}
	for name, w := range map[string]float64{
		"divergence_weight":  c.DivergenceWeight,
		"fundamental_weight": c.FundamentalWeight,
		"technical_weight":   c.TechnicalWeight,
	} {
		if w < 0 {
			return fmt.Errorf("%s must not be negative, got %g", name, w)
		}
	}
	sum := c.DivergenceWeight + c.FundamentalWeight + c.TechnicalWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %g", sum)
	}
	return nil
}

// IndicatorParams returns the calculator windows derived from c.
func (c Config) IndicatorParams() calculator.Params {
	return calculator.Params{
		EnvelopeLength:  c.EnvelopeLength,
		EnvelopePercent: c.EnvelopePercent,
		KnoxRSIPeriod:   c.KnoxRSIPeriod,
		MomentumPeriod:  c.KnoxMomentumPeriod,
	}
}
