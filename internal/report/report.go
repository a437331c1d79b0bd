package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"StockSentinel/internal/model"
)

// SortKey names a record column to order by.
type SortKey string

const (
	ByScore      SortKey = "score"
	BySymbol     SortKey = "symbol"
	ByPrice      SortKey = "price"
	ByTarget     SortKey = "target"
	ByConfidence SortKey = "confidence"
	ByReturn     SortKey = "return"
)

var less = map[SortKey]func(a, b model.AnalysisRecord) bool{
	ByScore:      func(a, b model.AnalysisRecord) bool { return a.OverallScore < b.OverallScore },
	BySymbol:     func(a, b model.AnalysisRecord) bool { return a.Symbol < b.Symbol },
	ByPrice:      func(a, b model.AnalysisRecord) bool { return a.CurrentPrice < b.CurrentPrice },
	ByTarget:     func(a, b model.AnalysisRecord) bool { return a.TargetPrice < b.TargetPrice },
	ByConfidence: func(a, b model.AnalysisRecord) bool { return a.Confidence < b.Confidence },
	ByReturn:     func(a, b model.AnalysisRecord) bool { return a.PotentialReturn < b.PotentialReturn },
}

// ParseSortKey accepts a key name case-insensitively; unknown names sort by score.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := less[k]; ok {
		return k
	}
	return ByScore
}

// Sort returns a sorted copy of records. Ties keep their input order.
func Sort(records []model.AnalysisRecord, key SortKey, descending bool) []model.AnalysisRecord {
	out := make([]model.AnalysisRecord, len(records))
	copy(out, records)
	fn, ok := less[key]
	if !ok {
		fn = less[ByScore]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return fn(out[j], out[i])
		}
		return fn(out[i], out[j])
	})
	return out
}

// Filter keeps records whose label is in labels. No labels keeps everything.
func Filter(records []model.AnalysisRecord, labels ...model.Recommendation) []model.AnalysisRecord {
	if len(labels) == 0 {
		return records
	}
	want := make(map[model.Recommendation]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}
	var out []model.AnalysisRecord
	for _, r := range records {
		if want[r.Recommendation] {
			out = append(out, r)
		}
	}
	return out
}

// Count is the number of records carrying one label.
type Count struct {
	Recommendation model.Recommendation `json:"recommendation"`
	Count          int                  `json:"count"`
}

// Distribution counts records per label, in label order from most bullish.
func Distribution(records []model.AnalysisRecord) []Count {
	counts := make(map[model.Recommendation]int, len(model.Recommendations))
	for _, r := range records {
		counts[r.Recommendation]++
	}
	out := make([]Count, 0, len(model.Recommendations))
	for _, l := range model.Recommendations {
		out = append(out, Count{Recommendation: l, Count: counts[l]})
	}
	return out
}

// CSVHeader lists the exported columns.
var CSVHeader = []string{
	"Symbol", "Recommendation", "Current Price", "Target Price", "Potential Return %",
	"Overall Score", "Confidence %", "Divergence Signal", "Technical Score", "Fundamental Score",
}

func fmtFloat(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []model.AnalysisRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Symbol,
			string(r.Recommendation),
			fmtFloat(r.CurrentPrice, 2),
			fmtFloat(r.TargetPrice, 2),
			fmtFloat(r.PotentialReturn, 2),
			fmtFloat(r.OverallScore, 1),
			fmtFloat(r.Confidence, 1),
			string(r.Divergence.Signal),
			strconv.Itoa(r.TechnicalScore),
			strconv.Itoa(r.FundamentalScore),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Symbol, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
