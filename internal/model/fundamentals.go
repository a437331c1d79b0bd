package model

// FundamentalSnapshot holds valuation and profitability ratios for one
// instrument. A nil field means the data source had no value.
type FundamentalSnapshot struct {
	PERatio       *float64 `json:"pe_ratio"`
	PBRatio       *float64 `json:"pb_ratio"`
	ROE           *float64 `json:"roe"`
	ProfitMargin  *float64 `json:"profit_margin"`
	RevenueGrowth *float64 `json:"revenue_growth"`
}

// Ratio returns a pointer to v, for building snapshots.
func Ratio(v float64) *float64 {
	return &v
}

// Empty reports whether no ratio is present.
func (f FundamentalSnapshot) Empty() bool {
	return f.PERatio == nil && f.PBRatio == nil && f.ROE == nil &&
		f.ProfitMargin == nil && f.RevenueGrowth == nil
}
