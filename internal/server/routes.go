package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"StockSentinel/internal/model"
	"StockSentinel/internal/report"
	"StockSentinel/internal/scheduler"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/analysis", s.handleAnalysisJSON)
	mux.HandleFunc("GET /api/analysis.csv", s.handleAnalysisCSV)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// view applies the sort and label query parameters to the last run.
type view struct {
	Run          *model.AnalysisRun
	Records      []model.AnalysisRecord
	Distribution []report.Count
}

func (s *Server) currentView(r *http.Request) (view, bool) {
	run := s.analysis.LastRun()
	if run == nil {
		return view{}, false
	}
	q := r.URL.Query()
	records := run.Records
	if raw := q.Get("label"); raw != "" {
		var labels []model.Recommendation
		for _, l := range strings.Split(raw, ",") {
			labels = append(labels, model.Recommendation(strings.ToUpper(strings.TrimSpace(l))))
		}
		records = report.Filter(records, labels...)
	}
	desc := true
	if v := q.Get("desc"); v != "" {
		desc, _ = strconv.ParseBool(v)
	}
	records = report.Sort(records, report.ParseSortKey(q.Get("sort")), desc)
	return view{Run: run, Records: records, Distribution: report.Distribution(run.Records)}, true
}

func (s *Server) handleAnalysisJSON(w http.ResponseWriter, r *http.Request) {
	v, ok := s.currentView(r)
	if !ok {
		writeError(w, http.StatusNotFound, "no analysis has run yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           v.Run.ID,
		"started_at":   v.Run.StartedAt,
		"duration_ms":  v.Run.Duration.Milliseconds(),
		"requested":    v.Run.Requested,
		"skipped":      v.Run.Skipped,
		"distribution": v.Distribution,
		"records":      v.Records,
	})
}

func (s *Server) handleAnalysisCSV(w http.ResponseWriter, r *http.Request) {
	v, ok := s.currentView(r)
	if !ok {
		writeError(w, http.StatusNotFound, "no analysis has run yet")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"stock_analysis_%s.csv\"", v.Run.StartedAt.Format("20060102_150405")))
	if err := report.WriteCSV(w, v.Records); err != nil {
		s.logger.Error().Err(err).Msg("failed to write csv")
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	run, err := s.analysis.RunAnalysis(r.Context(), scheduler.TriggerAPI)
	if errors.Is(err, scheduler.ErrRunInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       run.ID,
		"analyzed": len(run.Records),
		"skipped":  run.Skipped,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v, _ := s.currentView(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, v); err != nil {
		s.logger.Error().Err(err).Msg("failed to render dashboard")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"f2": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"f1": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	"label": func(r model.Recommendation) string {
		return strings.ReplaceAll(string(r), "_", " ")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>StockSentinel</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { padding: 4px 10px; border-bottom: 1px solid #ddd; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.STRONG_BUY, .BUY { color: #0a7f2e; }
.STRONG_SELL, .SELL { color: #b3261e; }
</style>
</head>
<body>
<h1>StockSentinel</h1>
{{if .Run}}
<p>Run {{.Run.ID}} at {{.Run.StartedAt.Format "2006-01-02 15:04:05 MST"}}: {{len .Run.Records}} of {{.Run.Requested}} analyzed{{if .Run.Skipped}}, skipped {{range $i, $s := .Run.Skipped}}{{if $i}}, {{end}}{{$s}}{{end}}{{end}}.</p>
<p>{{range .Distribution}}{{label .Recommendation}}: {{.Count}} &nbsp; {{end}}</p>
<p><a href="/api/analysis.csv">Download CSV</a></p>
<table>
<tr><th>Symbol</th><th>Recommendation</th><th>Price</th><th>Target</th><th>Return %</th><th>Score</th><th>Confidence %</th><th>Divergence</th><th>Technical</th><th>Fundamental</th></tr>
{{range .Records}}
<tr>
<td><a href="{{.ChartLink}}">{{.Symbol}}</a></td>
<td class="{{.Recommendation}}">{{label .Recommendation}}</td>
<td>{{f2 .CurrentPrice}}</td>
<td>{{f2 .TargetPrice}}</td>
<td>{{f2 .PotentialReturn}}</td>
<td>{{f1 .OverallScore}}</td>
<td>{{f1 .Confidence}}</td>
<td>{{.Divergence.Signal}}</td>
<td>{{.TechnicalScore}}</td>
<td>{{.FundamentalScore}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>No analysis has run yet.</p>
{{end}}
</body>
</html>
`))
