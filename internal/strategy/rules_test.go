package strategy

import (
	"testing"

	"StockSentinel/internal/model"

	"github.com/stretchr/testify/assert"
)

func ratio(v float64) *float64 { return &v }

func TestScoreFundamentals(t *testing.T) {
	tests := []struct {
		name  string
		in    model.FundamentalSnapshot
		want  int
		rules []string
	}{
		{"all absent", model.FundamentalSnapshot{}, 50, nil},
		{"pe lower bound", model.FundamentalSnapshot{PERatio: ratio(5)}, 60, []string{"pe_fair"}},
		{"pe upper bound", model.FundamentalSnapshot{PERatio: ratio(25)}, 60, []string{"pe_fair"}},
		{"pe too low", model.FundamentalSnapshot{PERatio: ratio(4.99)}, 45, []string{"pe_suspiciously_low"}},
		{"pe between fair and expensive", model.FundamentalSnapshot{PERatio: ratio(40)}, 50, nil},
		{"pe expensive", model.FundamentalSnapshot{PERatio: ratio(41)}, 40, []string{"pe_expensive"}},
		{"pb cheap", model.FundamentalSnapshot{PBRatio: ratio(2.9)}, 60, []string{"pb_cheap"}},
		{"pb expensive", model.FundamentalSnapshot{PBRatio: ratio(5.1)}, 40, []string{"pb_expensive"}},
		{"roe at good upper bound", model.FundamentalSnapshot{ROE: ratio(0.15)}, 60, []string{"roe_good"}},
		{"roe at good lower bound", model.FundamentalSnapshot{ROE: ratio(0.10)}, 50, nil},
		{"roe negative", model.FundamentalSnapshot{ROE: ratio(-0.01)}, 35, []string{"roe_negative"}},
		{"margin negative", model.FundamentalSnapshot{ProfitMargin: ratio(-0.2)}, 40, []string{"margin_negative"}},
		{"growth negative", model.FundamentalSnapshot{RevenueGrowth: ratio(-0.05)}, 40, []string{"growth_negative"}},
		{
			name: "everything strong clamps to 100",
			in: model.FundamentalSnapshot{
				PERatio:       ratio(15),
				PBRatio:       ratio(2),
				ROE:           ratio(0.20),
				ProfitMargin:  ratio(0.15),
				RevenueGrowth: ratio(0.20),
			},
			want:  100,
			rules: []string{"pe_fair", "pb_cheap", "roe_strong", "margin_healthy", "growth_strong"},
		},
		{
			name: "everything weak",
			in: model.FundamentalSnapshot{
				PERatio:       ratio(60),
				PBRatio:       ratio(8),
				ROE:           ratio(-0.1),
				ProfitMargin:  ratio(-0.1),
				RevenueGrowth: ratio(-0.1),
			},
			want:  0,
			rules: []string{"pe_expensive", "pb_expensive", "roe_negative", "margin_negative", "growth_negative"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rules := ScoreFundamentals(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rules, rules)
		})
	}
}

func TestScoreTechnical(t *testing.T) {
	tests := []struct {
		name string
		in   model.TechnicalSnapshot
		want int
	}{
		{
			name: "flat market",
			in:   model.TechnicalSnapshot{RSI14: 50, MACD: 0, MACDSignal: 0, SMA20: 100, SMA50: 100, VolumeTrend: 1},
			want: 40,
		},
		{
			name: "oversold uptrend with volume",
			in:   model.TechnicalSnapshot{RSI14: 25, MACD: 1, MACDSignal: 0.5, SMA20: 110, SMA50: 100, VolumeTrend: 1.5},
			want: 90,
		},
		{
			name: "overbought downtrend on fading volume",
			in:   model.TechnicalSnapshot{RSI14: 80, MACD: -1, MACDSignal: 0, SMA20: 90, SMA50: 100, VolumeTrend: 0.5},
			want: 10,
		},
		{
			name: "rsi band edges count as neutral",
			in:   model.TechnicalSnapshot{RSI14: 70, MACD: 1, MACDSignal: 0, SMA20: 101, SMA50: 100, VolumeTrend: 1.2},
			want: 80,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ScoreTechnical(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreTechnical_StaysInRange(t *testing.T) {
	for _, rsi := range []float64{0, 29, 30, 50, 70, 71, 100} {
		for _, vt := range []float64{0, 0.79, 1, 1.21, 5} {
			got, _ := ScoreTechnical(model.TechnicalSnapshot{RSI14: rsi, VolumeTrend: vt, SMA20: 1, SMA50: 2})
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}
