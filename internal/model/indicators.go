package model

// TechnicalSnapshot holds all computed technical indicators for the latest bar.
type TechnicalSnapshot struct {
	RSI14         float64 `json:"rsi_14"`
	KnoxRSI       float64 `json:"knox_rsi"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macd_signal"`
	BBUpper       float64 `json:"bb_upper"`
	BBLower       float64 `json:"bb_lower"`
	SMA20         float64 `json:"sma_20"`
	SMA50         float64 `json:"sma_50"`
	Momentum      float64 `json:"momentum"` // percent, 5.0 means +5%
	EnvelopeSMA   float64 `json:"envelope_sma"`
	UpperEnvelope float64 `json:"upper_envelope"`
	LowerEnvelope float64 `json:"lower_envelope"`
	VolumeTrend   float64 `json:"volume_trend"`
}

// IndicatorValue is one named entry of a TechnicalSnapshot.
type IndicatorValue struct {
	Name  string
	Value float64
}

// Values returns the snapshot as an ordered name/value list.
func (s TechnicalSnapshot) Values() []IndicatorValue {
	return []IndicatorValue{
		{"rsi_14", s.RSI14},
		{"knox_rsi", s.KnoxRSI},
		{"macd", s.MACD},
		{"macd_signal", s.MACDSignal},
		{"bb_upper", s.BBUpper},
		{"bb_lower", s.BBLower},
		{"sma_20", s.SMA20},
		{"sma_50", s.SMA50},
		{"momentum", s.Momentum},
		{"envelope_sma", s.EnvelopeSMA},
		{"upper_envelope", s.UpperEnvelope},
		{"lower_envelope", s.LowerEnvelope},
		{"volume_trend", s.VolumeTrend},
	}
}
