package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	records []model.AnalysisRecord
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRunner) AnalyzeAll(_ context.Context, symbols []string) model.AnalysisRun {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return model.AnalysisRun{ID: "run-1", Requested: len(symbols), Records: f.records}
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMessenger) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.err
}

type fakeRecorder struct {
	recorder.NoopRecorder
	runs       []recorder.RunEvent
	deliveries []recorder.Delivery
}

func (f *fakeRecorder) RecordRun(evt *recorder.RunEvent) error {
	f.runs = append(f.runs, *evt)
	return nil
}

func (f *fakeRecorder) RecordDelivery(d *recorder.Delivery) error {
	f.deliveries = append(f.deliveries, *d)
	return nil
}

func (f *fakeRecorder) RecentDeliveries(int) ([]recorder.Delivery, error) {
	if len(f.deliveries) == 0 {
		return nil, nil
	}
	return []recorder.Delivery{f.deliveries[len(f.deliveries)-1]}, nil
}

func symbols(list ...string) SymbolSource {
	return func() ([]string, error) { return list, nil }
}

func newTestScheduler(runner Runner, msg Messenger, rec recorder.Recorder) *Scheduler {
	return NewScheduler(context.Background(), runner, msg, rec, symbols("AAA.NS", "BBB.NS", "CCC.NS"), notifier.DefaultAlertOptions(), time.UTC)
}

func sampleRecords() []model.AnalysisRecord {
	return []model.AnalysisRecord{
		{Symbol: "AAA.NS", Recommendation: model.StrongBuy, OverallScore: 80, CurrentPrice: 100, TargetPrice: 115, PotentialReturn: 15},
		{Symbol: "BBB.NS", Recommendation: model.Hold, OverallScore: 50, CurrentPrice: 50, TargetPrice: 50},
	}
}

func TestRunAlertNow_SendsSummaryThenAlert(t *testing.T) {
	msg := &fakeMessenger{}
	rec := &fakeRecorder{}
	s := newTestScheduler(&fakeRunner{records: sampleRecords()}, msg, rec)

	require.NoError(t, s.RunAlertNow(TriggerManual))

	require.Len(t, msg.sent, 2)
	assert.Contains(t, msg.sent[0], "Daily Stock Analysis Summary")
	assert.Contains(t, msg.sent[1], "STRONG BUY")
	assert.Contains(t, msg.sent[1], "Total: 1 actionable stocks")

	require.Len(t, rec.runs, 1)
	assert.Equal(t, TriggerManual, rec.runs[0].Trigger)
	assert.Equal(t, 3, rec.runs[0].Requested)
	assert.Equal(t, 2, rec.runs[0].Analyzed)

	require.Len(t, rec.deliveries, 2)
	assert.Equal(t, recorder.KindSummary, rec.deliveries[0].Kind)
	assert.Equal(t, recorder.KindConsolidated, rec.deliveries[1].Kind)
	assert.Equal(t, 1, rec.deliveries[1].Actionable)
	assert.True(t, rec.deliveries[1].Success)

	require.NotNil(t, s.LastRun())
	assert.Equal(t, "run-1", s.LastRun().ID)
}

func TestRunAlertNow_NothingActionable(t *testing.T) {
	msg := &fakeMessenger{}
	records := []model.AnalysisRecord{{Symbol: "BBB.NS", Recommendation: model.Hold, OverallScore: 50}}
	s := newTestScheduler(&fakeRunner{records: records}, msg, &fakeRecorder{})

	require.NoError(t, s.RunAlertNow(TriggerCron))
	require.Len(t, msg.sent, 1, "only the summary is sent")
}

func TestRunAlertNow_RecordsFailedDelivery(t *testing.T) {
	msg := &fakeMessenger{err: errors.New("telegram down")}
	rec := &fakeRecorder{}
	s := newTestScheduler(&fakeRunner{records: sampleRecords()}, msg, rec)

	require.NoError(t, s.RunAlertNow(TriggerCron))
	require.Len(t, rec.deliveries, 2)
	assert.False(t, rec.deliveries[0].Success)
	assert.Equal(t, "telegram down", rec.deliveries[0].Error)
}

func TestRunAlertNow_WithoutNotifier(t *testing.T) {
	rec := &fakeRecorder{}
	s := newTestScheduler(&fakeRunner{records: sampleRecords()}, nil, rec)
	require.NoError(t, s.RunAlertNow(TriggerStartup))
	assert.Empty(t, rec.deliveries)
	assert.Len(t, rec.runs, 1)
}

func TestRunAnalysis_SkipsWhileRunning(t *testing.T) {
	runner := &fakeRunner{records: sampleRecords(), block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := newTestScheduler(runner, &fakeMessenger{}, &fakeRecorder{})

	done := make(chan error, 1)
	go func() {
		_, err := s.RunAnalysis(context.Background(), TriggerCron)
		done <- err
	}()
	<-runner.started

	_, err := s.RunAnalysis(context.Background(), TriggerManual)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(runner.block)
	assert.NoError(t, <-done)
}

func TestRunAnalysis_EmptyWatchlist(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeRunner{}, nil, &fakeRecorder{}, symbols(), notifier.DefaultAlertOptions(), time.UTC)
	_, err := s.RunAnalysis(context.Background(), TriggerManual)
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	s := newTestScheduler(&fakeRunner{}, nil, &fakeRecorder{})
	assert.NoError(t, s.Register("0 0 8 * * *"))
	assert.Error(t, s.Register("every morning"))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestHandleCommand(t *testing.T) {
	msg := &fakeMessenger{}
	s := newTestScheduler(&fakeRunner{records: sampleRecords()}, msg, &fakeRecorder{})
	ctx := context.Background()

	assert.Equal(t, "No analysis has run yet.", s.HandleCommand(ctx, "/summary"))

	reply := s.HandleCommand(ctx, "/scan")
	assert.Contains(t, reply, "AAA")
	assert.Empty(t, msg.sent, "/scan replies instead of broadcasting")

	assert.Contains(t, s.HandleCommand(ctx, "/summary"), "Total Stocks: 2")
	assert.Contains(t, s.HandleCommand(ctx, "/status"), "Analyzed: 2/3")
	assert.Contains(t, s.HandleCommand(ctx, "/stock aaa"), "<b>AAA</b> - STRONG_BUY")
	assert.Contains(t, s.HandleCommand(ctx, "/stock ZZZ"), "not in the last run")
	assert.Contains(t, s.HandleCommand(ctx, "/test"), "Test message")
	assert.True(t, strings.HasPrefix(s.HandleCommand(ctx, "hello"), "Available commands"))
}
