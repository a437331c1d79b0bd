package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"StockSentinel/internal/model"
	"StockSentinel/internal/report"
	"StockSentinel/internal/watchlist"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	csvOut    string
	sortBy    string
	ascending bool
	labels    []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [SYMBOL...]",
	Short: "Analyze the watchlist (or the given symbols) once and print the results",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&csvOut, "csv", "o", "", "also write the results to this CSV file")
	analyzeCmd.Flags().StringVar(&sortBy, "sort", "score", "sort by score, symbol, price, target, confidence or return")
	analyzeCmd.Flags().BoolVar(&ascending, "asc", false, "sort ascending")
	analyzeCmd.Flags().StringSliceVar(&labels, "only", nil, "only show these recommendations, e.g. STRONG_BUY,BUY")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	symbols, err := watchlist.Parse(strings.NewReader(strings.Join(args, "\n")))
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		if symbols, err = a.symbols(); err != nil {
			return fmt.Errorf("load watchlist: %w", err)
		}
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to analyze")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := a.analyzer.AnalyzeAll(ctx, symbols)

	var only []model.Recommendation
	for _, l := range labels {
		only = append(only, model.Recommendation(strings.ToUpper(strings.TrimSpace(l))))
	}
	records := report.Sort(report.Filter(run.Records, only...), report.ParseSortKey(sortBy), !ascending)

	printTable(cmd.OutOrStdout(), run, records)

	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := report.WriteCSV(f, records); err != nil {
			return err
		}
		log.Info().Str("path", csvOut).Int("rows", len(records)).Msg("results exported")
	}
	return nil
}

func printTable(w io.Writer, run model.AnalysisRun, records []model.AnalysisRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Symbol\tRecommendation\tPrice\tTarget\tReturn %\tScore\tConfidence %\tDivergence\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%+.2f\t%.1f\t%.1f\t%s\t\n",
			r.Symbol, r.Recommendation, r.CurrentPrice, r.TargetPrice, r.PotentialReturn,
			r.OverallScore, r.Confidence, r.Divergence.Signal)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nAnalyzed %d of %d symbols in %s\n", len(run.Records), run.Requested, run.Duration.Round(time.Millisecond))
	if len(run.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped: %s\n", strings.Join(run.Skipped, ", "))
	}
	for _, c := range report.Distribution(run.Records) {
		if c.Count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", c.Recommendation, c.Count)
		}
	}
}
