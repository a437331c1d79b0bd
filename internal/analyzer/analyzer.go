package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/model"
	"StockSentinel/internal/strategy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultHistoryDays is roughly one year of daily bars.
const DefaultHistoryDays = 365

// Analyzer runs the scoring engine over symbols fetched from one data source.
type Analyzer struct {
	fetcher     collector.Fetcher
	engine      *strategy.Engine
	historyDays int
	workers     int
	now         func() time.Time
	logger      zerolog.Logger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithHistoryDays sets how many calendar days of bars are requested.
func WithHistoryDays(days int) Option {
	return func(a *Analyzer) {
		if days > 0 {
			a.historyDays = days
		}
	}
}

// WithWorkers analyzes up to n symbols concurrently. n <= 1 is sequential.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New creates an Analyzer.
func New(fetcher collector.Fetcher, engine *strategy.Engine, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:     fetcher,
		engine:      engine,
		historyDays: DefaultHistoryDays,
		workers:     1,
		now:         time.Now,
		logger:      log.With().Str("component", "analyzer").Str("source", fetcher.Name()).Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeSymbol fetches, cleans and scores one symbol.
func (a *Analyzer) AnalyzeSymbol(ctx context.Context, symbol string) (*model.AnalysisRecord, error) {
	raw, err := a.fetcher.FetchDailyBars(ctx, symbol, a.historyDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}
	if len(raw) < MinBars {
		return nil, insufficient(symbol, len(raw), "raw")
	}
	bars := CleanBars(raw)
	if len(bars) < MinBars {
		return nil, insufficient(symbol, len(bars), "clean")
	}

	fundamentals, err := a.fetcher.FetchFundamentals(ctx, symbol)
	if err != nil {
		a.logger.Warn().Err(err).Str("symbol", symbol).Msg("fundamentals unavailable, scoring without them")
		fundamentals = model.FundamentalSnapshot{}
	}

	eval := a.engine.Evaluate(bars, fundamentals)
	res := eval.Result

	return &model.AnalysisRecord{
		Symbol:           symbol,
		CurrentPrice:     round2(eval.CurrentPrice),
		Recommendation:   res.Recommendation,
		OverallScore:     res.OverallScore,
		TargetPrice:      res.TargetPrice,
		Confidence:       res.Confidence,
		Divergence:       eval.Divergence,
		TechnicalScore:   eval.TechnicalScore,
		FundamentalScore: eval.FundamentalScore,
		Factors:          eval.Factors,
		Technical:        eval.Technical,
		Fundamentals:     fundamentals,
		PotentialReturn:  PotentialReturn(eval.CurrentPrice, res.TargetPrice),
		ChartLink:        ChartLink(symbol),
		AnalyzedAt:       a.now(),
	}, nil
}

// AnalyzeAll analyzes symbols and returns the successful records in input
// order. A failing symbol is logged and listed in Skipped; it never aborts
// the run.
func (a *Analyzer) AnalyzeAll(ctx context.Context, symbols []string) model.AnalysisRun {
	run := model.AnalysisRun{
		ID:        uuid.NewString(),
		StartedAt: a.now(),
		Requested: len(symbols),
	}
	logger := a.logger.With().Str("run_id", run.ID).Logger()
	logger.Info().Int("symbols", len(symbols)).Int("workers", a.workers).Msg("analysis started")

	records := make([]*model.AnalysisRecord, len(symbols))
	errs := make([]error, len(symbols))

	if a.workers <= 1 {
		for i, sym := range symbols {
			records[i], errs[i] = a.analyzeGuarded(ctx, sym)
		}
	} else {
		sem := make(chan struct{}, a.workers)
		var wg sync.WaitGroup
	dispatch:
		for i, sym := range symbols {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				for j := i; j < len(symbols); j++ {
					errs[j] = fmt.Errorf("%s: %w", symbols[j], ctx.Err())
				}
				break dispatch
			}
			wg.Add(1)
			go func(i int, sym string) {
				defer wg.Done()
				defer func() { <-sem }()
				records[i], errs[i] = a.analyzeGuarded(ctx, sym)
			}(i, sym)
		}
		wg.Wait()
	}

	for i, sym := range symbols {
		if errs[i] != nil {
			ev := logger.Error()
			if errors.Is(errs[i], ErrInsufficientData) {
				ev = logger.Warn()
			}
			ev.Err(errs[i]).Str("symbol", sym).Msg("symbol skipped")
			run.Skipped = append(run.Skipped, sym)
			continue
		}
		run.Records = append(run.Records, *records[i])
	}

	run.Duration = a.now().Sub(run.StartedAt)
	logger.Info().
		Int("analyzed", len(run.Records)).
		Int("skipped", len(run.Skipped)).
		Dur("duration", run.Duration).
		Msg("analysis completed")
	return run
}

// analyzeGuarded converts a panic in one symbol into an error so the batch continues.
func (a *Analyzer) analyzeGuarded(ctx context.Context, symbol string) (rec *model.AnalysisRecord, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("%s: analysis panic: %v", symbol, r)
		}
	}()
	return a.AnalyzeSymbol(ctx, symbol)
}

// PotentialReturn is the percent move from current to target, to two decimals.
func PotentialReturn(current, target float64) float64 {
	if current == 0 {
		return 0
	}
	return round2((target - current) / current * 100)
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
