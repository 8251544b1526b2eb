package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/M-Vagrant/apollo/internal/httputil"
	"github.com/M-Vagrant/apollo/internal/planning"
)

// handleCyclesChart renders an HTML page charting recent cycle durations
// and obstacle counts using go-echarts. Debugging-only endpoint (no auth).
// Query params:
//
//	run (optional, defaults to the current run)
//	limit (optional, default 200)
func (ws *WebServer) handleCyclesChart(w http.ResponseWriter, r *http.Request) {
	if ws.cycles == nil {
		httputil.InternalServerError(w, "no cycle store configured")
		return
	}

	runID := r.URL.Query().Get("run")
	if runID == "" {
		runID = ws.runID
	}
	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	recs, err := ws.cycles.ListCycles(r.Context(), runID, limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list cycles: %v", err))
		return
	}
	if len(recs) == 0 {
		httputil.NotFound(w, fmt.Sprintf("no cycles recorded for run %s", runID))
		return
	}

	seqs := make([]string, 0, len(recs))
	durations := make([]opts.LineData, 0, len(recs))
	obstacles := make([]opts.ScatterData, 0, len(recs))
	failed := 0
	for _, rec := range recs {
		seqs = append(seqs, strconv.FormatUint(uint64(rec.Seq), 10))
		durations = append(durations, opts.LineData{Value: rec.DurationMS})
		obstacles = append(obstacles, opts.ScatterData{Value: rec.ObstacleCount})
		if rec.Status != planning.CycleStatusOK {
			failed++
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Planning Cycles", Theme: "dark", Width: "1200px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Cycle duration", Subtitle: fmt.Sprintf("run=%s cycles=%d failed=%d", runID, len(recs), failed)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "seq"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)
	line.SetXAxis(seqs).
		AddSeries("duration_ms", durations,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Obstacles per cycle"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "seq"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	scatter.SetXAxis(seqs).
		AddSeries("obstacles", obstacles,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
		)

	page := components.NewPage()
	page.AddCharts(line, scatter)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
