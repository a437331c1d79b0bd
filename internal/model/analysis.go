package model

import "time"

// AnalysisRecord is the full per-symbol output of one analysis.
type AnalysisRecord struct {
	Symbol           string              `json:"symbol"`
	CurrentPrice     float64             `json:"current_price"`
	Recommendation   Recommendation      `json:"recommendation"`
	OverallScore     float64             `json:"overall_score"`
	TargetPrice      float64             `json:"target_price"`
	Confidence       float64             `json:"confidence"`
	Divergence       DivergenceVerdict   `json:"divergence"`
	TechnicalScore   int                 `json:"technical_score"`
	Factors          []FactorScore       `json:"factors"`
	FundamentalScore int                 `json:"fundamental_score"`
	Technical        TechnicalSnapshot   `json:"technical_data"`
	Fundamentals     FundamentalSnapshot `json:"fundamental_metrics"`
	PotentialReturn  float64             `json:"potential_return"`
	ChartLink        string              `json:"tradingview_link"`
	AnalyzedAt       time.Time           `json:"analyzed_at"`
}

// AnalysisRun is the result of analyzing a whole watchlist once.
type AnalysisRun struct {
	ID        string           `json:"id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Requested int              `json:"requested"`
	Records   []AnalysisRecord `json:"records"`
	Skipped   []string         `json:"skipped"`
}
