package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockSentinel/internal/model"
	"StockSentinel/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalysis struct {
	last     *model.AnalysisRun
	runErr   error
	triggers []string
	panics   bool
}

func (f *fakeAnalysis) LastRun() *model.AnalysisRun {
	if f.panics {
		panic("boom")
	}
	return f.last
}

func (f *fakeAnalysis) RunAnalysis(_ context.Context, trigger string) (*model.AnalysisRun, error) {
	f.triggers = append(f.triggers, trigger)
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.last, nil
}

func sampleRun() *model.AnalysisRun {
	return &model.AnalysisRun{
		ID:        "run-1",
		StartedAt: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		Requested: 3,
		Skipped:   []string{"BAD.NS"},
		Records: []model.AnalysisRecord{
			{Symbol: "TCS.NS", Recommendation: model.Buy, OverallScore: 66, CurrentPrice: 3500, TargetPrice: 3920, PotentialReturn: 12, ChartLink: "https://www.tradingview.com/chart/?symbol=NSE%3ATCS"},
			{Symbol: "INFY.NS", Recommendation: model.Hold, OverallScore: 49, CurrentPrice: 1500, TargetPrice: 1500},
		},
	}
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestAnalysisJSON(t *testing.T) {
	s := New("127.0.0.1:0", &fakeAnalysis{last: sampleRun()})

	rec := do(t, s, http.MethodGet, "/api/analysis?sort=symbol&desc=false")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ID      string                 `json:"id"`
		Skipped []string               `json:"skipped"`
		Records []model.AnalysisRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.ID)
	assert.Equal(t, []string{"BAD.NS"}, body.Skipped)
	require.Len(t, body.Records, 2)
	assert.Equal(t, "INFY.NS", body.Records[0].Symbol)
}

func TestAnalysisJSON_LabelFilter(t *testing.T) {
	s := New("127.0.0.1:0", &fakeAnalysis{last: sampleRun()})
	rec := do(t, s, http.MethodGet, "/api/analysis?label=buy")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TCS.NS")
	assert.NotContains(t, rec.Body.String(), "INFY.NS")
}

func TestAnalysisJSON_NoRun(t *testing.T) {
	s := New("127.0.0.1:0", &fakeAnalysis{})
	rec := do(t, s, http.MethodGet, "/api/analysis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisCSV(t *testing.T) {
	s := New("127.0.0.1:0", &fakeAnalysis{last: sampleRun()})
	rec := do(t, s, http.MethodGet, "/api/analysis.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "stock_analysis_20250602_080000.csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Symbol", rows[0][0])
	assert.Equal(t, "TCS.NS", rows[1][0], "default order is score descending")
}

func TestScan(t *testing.T) {
	fa := &fakeAnalysis{last: sampleRun()}
	s := New("127.0.0.1:0", fa)

	rec := do(t, s, http.MethodPost, "/api/scan")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{scheduler.TriggerAPI}, fa.triggers)

	fa.runErr = scheduler.ErrRunInProgress
	rec = do(t, s, http.MethodPost, "/api/scan")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/scan")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDashboard(t *testing.T) {
	s := New("127.0.0.1:0", &fakeAnalysis{last: sampleRun()})
	rec := do(t, s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "TCS.NS")
	assert.Contains(t, body, "3920.00")
	assert.Contains(t, body, "BUY: 1")
	assert.Contains(t, body, "skipped BAD.NS")

	empty := do(t, New("127.0.0.1:0", &fakeAnalysis{}), http.MethodGet, "/")
	assert.True(t, strings.Contains(empty.Body.String(), "No analysis has run yet"))

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/missing").Code)
}

func TestRecovery(t *testing.T) {
	s := New("127.0.0.1:0", &fakeAnalysis{panics: true})
	rec := do(t, s, http.MethodGet, "/api/analysis")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
