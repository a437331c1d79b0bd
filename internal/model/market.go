package model

import (
	"math"
	"time"
)

// OHLCV represents a single daily bar. A value the data source did not
// provide is carried as NaN until the series is cleaned.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Missing reports whether v marks an absent value.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// Closes returns the close prices of bars in order.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes returns the volumes of bars in order.
func Volumes(bars []OHLCV) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}
