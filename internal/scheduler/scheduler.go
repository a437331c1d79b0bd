package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Run triggers.
const (
	TriggerCron    = "CRON"
	TriggerManual  = "MANUAL"
	TriggerStartup = "STARTUP"
	TriggerAPI     = "API"
)

// ErrRunInProgress is returned when an analysis is requested while one is running.
var ErrRunInProgress = errors.New("analysis already in progress")

// Runner analyzes a batch of symbols.
type Runner interface {
	AnalyzeAll(ctx context.Context, symbols []string) model.AnalysisRun
}

// Messenger delivers alert text.
type Messenger interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// SymbolSource returns the current watchlist.
type SymbolSource func() ([]string, error)

// Scheduler runs the daily alert job and serves manual triggers.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier Messenger // nil disables alert delivery
	Recorder recorder.Recorder
	Symbols  SymbolSource
	Alerts   notifier.AlertOptions
	Ctx      context.Context

	running chan struct{}
	mu      sync.RWMutex
	last    *model.AnalysisRun
	now     func() time.Time
	logger  zerolog.Logger
}

// NewScheduler creates a new Scheduler whose cron entries fire in loc.
func NewScheduler(ctx context.Context, runner Runner, msg Messenger, rec recorder.Recorder, symbols SymbolSource, alerts notifier.AlertOptions, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Runner:   runner,
		Notifier: msg,
		Recorder: rec,
		Symbols:  symbols,
		Alerts:   alerts,
		Ctx:      ctx,
		running:  make(chan struct{}, 1),
		now:      func() time.Time { return time.Now().In(loc) },
		logger:   log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the daily alert job.
func (s *Scheduler) Register(alertSpec string) error {
	if _, err := s.Cron.AddFunc(alertSpec, s.alertTask); err != nil {
		return fmt.Errorf("register alert task: %w", err)
	}
	s.logger.Info().Str("spec", alertSpec).Msg("alert task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// LastRun returns the most recent completed run, or nil.
func (s *Scheduler) LastRun() *model.AnalysisRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// RunAnalysis analyzes the watchlist once and records the run. It returns
// ErrRunInProgress instead of starting a second concurrent run.
func (s *Scheduler) RunAnalysis(ctx context.Context, trigger string) (*model.AnalysisRun, error) {
	select {
	case s.running <- struct{}{}:
		defer func() { <-s.running }()
	default:
		return nil, ErrRunInProgress
	}

	symbols, err := s.Symbols()
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("watchlist is empty")
	}

	run := s.Runner.AnalyzeAll(ctx, symbols)

	s.mu.Lock()
	s.last = &run
	s.mu.Unlock()

	if err := s.Recorder.RecordRun(&recorder.RunEvent{
		RunID:     run.ID,
		StartedAt: run.StartedAt,
		Duration:  run.Duration,
		Requested: run.Requested,
		Analyzed:  len(run.Records),
		Skipped:   len(run.Skipped),
		Trigger:   trigger,
	}); err != nil {
		s.logger.Error().Err(err).Msg("record run")
	}
	return &run, nil
}

// RunAlertNow executes the alert job immediately (manual trigger / run on start).
func (s *Scheduler) RunAlertNow(trigger string) error {
	run, err := s.RunAnalysis(s.Ctx, trigger)
	if err != nil {
		return err
	}
	s.sendAlerts(run)
	return nil
}

func (s *Scheduler) alertTask() {
	s.logger.Info().Msg("running scheduled alert")
	if err := s.RunAlertNow(TriggerCron); err != nil {
		s.logger.Error().Err(err).Msg("scheduled alert")
	}
}

// sendAlerts sends the summary, then the consolidated alert when anything
// is actionable.
func (s *Scheduler) sendAlerts(run *model.AnalysisRun) {
	if len(run.Records) == 0 {
		s.logger.Warn().Str("run_id", run.ID).Msg("no analysis results available for alert")
		return
	}
	s.deliver(run.ID, recorder.KindSummary, 0, notifier.FormatSummary(run.Records, s.now()))

	actionable := notifier.Actionable(run.Records, s.Alerts.Actionable)
	if len(actionable) == 0 {
		s.logger.Info().Str("run_id", run.ID).Msg("no actionable stocks found")
		return
	}
	s.deliver(run.ID, recorder.KindConsolidated, len(actionable), notifier.FormatConsolidatedAlert(run.Records, s.Alerts))
}

func (s *Scheduler) deliver(runID, kind string, actionable int, text string) {
	if s.Notifier == nil {
		s.logger.Debug().Str("kind", kind).Msg("alert delivery disabled")
		return
	}
	d := &recorder.Delivery{RunID: runID, Kind: kind, Actionable: actionable, Success: true, SentAt: s.now()}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Str("kind", kind).Msg("send notification")
		d.Success = false
		d.Error = err.Error()
	}
	if err := s.Recorder.RecordDelivery(d); err != nil {
		s.logger.Error().Err(err).Msg("record delivery")
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch strings.ToLower(fields[0]) {
	case "/scan":
		run, err := s.RunAnalysis(ctx, TriggerManual)
		if err != nil {
			return fmt.Sprintf("❌ Scan failed: %v", err)
		}
		if msg := notifier.FormatConsolidatedAlert(run.Records, s.Alerts); msg != "" {
			return msg
		}
		return fmt.Sprintf("No actionable stocks among %d analyzed.", len(run.Records))
	case "/summary":
		run := s.LastRun()
		if run == nil {
			return notifier.FormatRunStatus(nil)
		}
		return notifier.FormatSummary(run.Records, s.now())
	case "/status":
		status := notifier.FormatRunStatus(s.LastRun())
		if recent, err := s.Recorder.RecentDeliveries(1); err == nil && len(recent) > 0 {
			d := recent[0]
			state := "ok"
			if !d.Success {
				state = "failed"
			}
			status += fmt.Sprintf("\nLast delivery: %s %s at %s", d.Kind, state, d.SentAt.In(s.now().Location()).Format("2006-01-02 15:04"))
		}
		return status
	case "/stock":
		if len(fields) < 2 {
			return "Usage: /stock SYMBOL"
		}
		return s.describe(fields[1])
	case "/test":
		return "🧪 Test message from StockSentinel"
	default:
		return helpText
	}
}

func (s *Scheduler) describe(symbol string) string {
	run := s.LastRun()
	if run == nil {
		return notifier.FormatRunStatus(nil)
	}
	want := strings.ToUpper(symbol)
	for _, r := range run.Records {
		if r.Symbol == want || strings.TrimSuffix(r.Symbol, ".NS") == want {
			return notifier.FormatRecord(r)
		}
	}
	return fmt.Sprintf("%s is not in the last run.", want)
}

const helpText = "Available commands:\n• /scan - analyze the watchlist now\n• /summary - counts from the last run\n• /status - last run and delivery\n• /stock SYMBOL - details for one symbol\n• /test - connectivity check"
