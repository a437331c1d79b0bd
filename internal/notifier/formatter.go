package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"StockSentinel/internal/model"
	"StockSentinel/internal/report"
)

// AlertOptions controls the consolidated alert.
type AlertOptions struct {
	Actionable     []model.Recommendation
	TopBuys        int // per STRONG_BUY and BUY section
	TopStrongSells int
}

// DefaultAlertOptions returns the standard alert settings.
func DefaultAlertOptions() AlertOptions {
	return AlertOptions{
		Actionable:     []model.Recommendation{model.StrongBuy, model.Buy, model.StrongSell},
		TopBuys:        3,
		TopStrongSells: 2,
	}
}

var labelEmoji = map[model.Recommendation]string{
	model.StrongBuy:  "🚀",
	model.Buy:        "📈",
	model.WeakBuy:    "↗️",
	model.Hold:       "⏸️",
	model.WeakSell:   "↘️",
	model.Sell:       "📉",
	model.StrongSell: "🔻",
}

// Actionable keeps the records whose label is in labels, preserving order.
func Actionable(records []model.AnalysisRecord, labels []model.Recommendation) []model.AnalysisRecord {
	if len(labels) == 0 {
		return nil
	}
	return report.Filter(records, labels...)
}

// displaySymbol drops the NSE suffix.
func displaySymbol(symbol string) string {
	return html.EscapeString(strings.TrimSuffix(symbol, ".NS"))
}

func byLabel(records []model.AnalysisRecord, label model.Recommendation, ascending bool) []model.AnalysisRecord {
	var out []model.AnalysisRecord
	for _, r := range records {
		if r.Recommendation == label {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].OverallScore < out[j].OverallScore
		}
		return out[i].OverallScore > out[j].OverallScore
	})
	return out
}

// FormatConsolidatedAlert builds one message listing the best actionable
// records. It returns "" when nothing is actionable.
func FormatConsolidatedAlert(records []model.AnalysisRecord, opts AlertOptions) string {
	actionable := Actionable(records, opts.Actionable)
	if len(actionable) == 0 {
		return ""
	}

	sections := []struct {
		Label     model.Recommendation
		Title     string
		Limit     int
		Ascending bool
	}{
		{model.StrongBuy, "STRONG BUY", opts.TopBuys, false},
		{model.Buy, "BUY", opts.TopBuys, false},
		{model.StrongSell, "STRONG SELL", opts.TopStrongSells, true},
	}

	var b strings.Builder
	b.WriteString("📈 <b>Stock Alert</b>\n")
	for _, sec := range sections {
		list := byLabel(actionable, sec.Label, sec.Ascending)
		if len(list) == 0 {
			continue
		}
		if len(list) > sec.Limit {
			list = list[:sec.Limit]
		}
		b.WriteString(fmt.Sprintf("\n%s <b>%s:</b>\n", labelEmoji[sec.Label], sec.Title))
		for _, r := range list {
			b.WriteString(fmt.Sprintf("• %s: %.2f → %.2f (%+.1f%%)\n",
				displaySymbol(r.Symbol), r.CurrentPrice, r.TargetPrice, r.PotentialReturn))
		}
	}
	b.WriteString(fmt.Sprintf("\nTotal: %d actionable stocks\n", len(actionable)))
	b.WriteString("⚠️ Not investment advice")
	return b.String()
}

// FormatSummary formats the daily per-label counts.
func FormatSummary(records []model.AnalysisRecord, at time.Time) string {
	counts := make(map[model.Recommendation]int)
	for _, c := range report.Distribution(records) {
		counts[c.Recommendation] = c.Count
	}
	var b strings.Builder
	b.WriteString("📊 <b>Daily Stock Analysis Summary</b>\n")
	b.WriteString(fmt.Sprintf("Time: %s\n", at.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Total Stocks: %d\n\n", len(records)))
	for _, l := range []struct {
		Label model.Recommendation
		Name  string
	}{
		{model.StrongBuy, "Strong Buy"},
		{model.Buy, "Buy"},
		{model.Hold, "Hold"},
		{model.Sell, "Sell"},
		{model.StrongSell, "Strong Sell"},
	} {
		b.WriteString(fmt.Sprintf("%s %s: %d\n", labelEmoji[l.Label], l.Name, counts[l.Label]))
	}
	b.WriteString("\nTop alerts will follow...")
	return b.String()
}

// FormatRecord formats one analysis record in full.
func FormatRecord(r model.AnalysisRecord) string {
	emoji, ok := labelEmoji[r.Recommendation]
	if !ok {
		emoji = "➡️"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> - %s\n", emoji, displaySymbol(r.Symbol), r.Recommendation))
	b.WriteString(fmt.Sprintf("LTP: %.2f\n", r.CurrentPrice))
	b.WriteString(fmt.Sprintf("Target: %.2f\n", r.TargetPrice))
	b.WriteString(fmt.Sprintf("Potential: %+.2f%%\n", r.PotentialReturn))
	b.WriteString(fmt.Sprintf("Confidence: %.1f%%\n", r.Confidence))
	b.WriteString(fmt.Sprintf("Score: %.1f/100\n", r.OverallScore))
	b.WriteString(fmt.Sprintf("Signal: %s\n", r.Divergence.Signal))
	for _, f := range r.Factors {
		b.WriteString(fmt.Sprintf("  %s(%s): %.0f (×%.2f) = %.1f\n",
			f.Name, html.EscapeString(f.Commentary), f.RawScore, f.Weight, f.Weighted))
	}
	b.WriteString(fmt.Sprintf("TradingView: %s", r.ChartLink))
	return b.String()
}

// FormatRunStatus describes the latest analysis run.
func FormatRunStatus(run *model.AnalysisRun) string {
	if run == nil {
		return "No analysis has run yet."
	}
	return fmt.Sprintf("🛰 <b>Last run</b>\nID: %s\nStarted: %s\nDuration: %s\nAnalyzed: %d/%d\nSkipped: %d",
		run.ID, run.StartedAt.Format("2006-01-02 15:04"), run.Duration.Round(time.Millisecond),
		len(run.Records), run.Requested, len(run.Skipped))
}
